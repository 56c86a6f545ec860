package models

import "strings"

// User represents a local parent account
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name"`
	FamilyID  string `json:"familyId"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// NormalizeEmail trims and lowercases an email so it can be used as the account key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName joins first and last name the way the account list shows them
func DisplayName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// WithoutPassword returns a copy safe to hand out of the store
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}
