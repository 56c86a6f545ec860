package models

// Advice is the scheduling guidance produced from a child's event history
type Advice struct {
	Summary         string   `json:"summary"`
	BestWindow      string   `json:"bestWindow"`
	Recommendations []string `json:"recommendations"`
}
