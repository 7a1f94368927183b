package models

import "time"

// Gender is the normalized gender value stored on a patient record.
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// Entity is a labeled span returned by the NER collaborator.
type Entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ExtractedFields holds the best-effort patient identity inferred from
// report text. Name is empty when no pattern matched; Age 0 means unknown.
type ExtractedFields struct {
	Name   string `json:"name,omitempty"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

// HasName reports whether a usable display name was extracted.
func (f ExtractedFields) HasName() bool {
	return f.Name != ""
}

// Event is the envelope published to the event bus after a write commits.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // patient.created, report.created, patient.deleted
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}
