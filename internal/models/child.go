package models

// Child represents a child profile inside a family
type Child struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FamilyID string `json:"familyId"`
}
