package models

import "time"

// InviteToken lets a partner join an existing family at signup
type InviteToken struct {
	Token        string `json:"token"`
	FamilyID     string `json:"familyId"`
	InviteeEmail string `json:"inviteeEmail"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
	UsedAt       *int64 `json:"usedAt,omitempty"`
	UsedBy       string `json:"usedBy,omitempty"`
}

// IsExpired reports whether the token expired before now.
// Tokens without an expiry never expire.
func (i *InviteToken) IsExpired(now time.Time) bool {
	if i.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() >= i.ExpiresAt
}

func (i *InviteToken) IsUsed() bool {
	return i.UsedAt != nil
}

func (i *InviteToken) IsValid(now time.Time) bool {
	return !i.IsExpired(now) && !i.IsUsed()
}
