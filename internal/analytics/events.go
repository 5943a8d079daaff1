// Package analytics publishes portal usage events to Kafka and aggregates
// them into query statistics served over HTTP.
package analytics

import "time"

// Document lifecycle actions carried by IngestEvent.
const (
	ActionIngested  = "ingested"
	ActionReindexed = "reindexed"
	ActionDeleted   = "deleted"
)

// SearchEvent records one resolved query.
type SearchEvent struct {
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	Outcome   string    `json:"outcome,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IngestEvent records one document lifecycle change.
type IngestEvent struct {
	DocumentID string    `json:"documentId"`
	Title      string    `json:"title,omitempty"`
	Action     string    `json:"action"`
	Sections   int       `json:"sections,omitempty"`
	Keywords   int       `json:"keywords,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
