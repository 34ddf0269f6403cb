package entity

import "time"

// AuditEntry is an append-only record of one state change. Entries are never
// mutated or deleted; a failed append must not block the action it describes.
type AuditEntry struct {
	IncidentID string    `json:"incident_id" dynamo:"incident_id,hash"`
	CreatedAt  time.Time `json:"created_at" dynamo:"created_at,range"`
	Event      string    `json:"event" dynamo:"event"`
	Content    string    `json:"content" dynamo:"content"`
}
