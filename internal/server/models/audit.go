package models

import (
	"encoding/json"
	"time"
)

// AuditLogEntry is one append-only row of the audit trail. Details is an
// arbitrary JSON object.
type AuditLogEntry struct {
	ID         int64
	UserID     string
	Username   string
	Action     string
	EntityType *string
	EntityID   *string
	Details    json.RawMessage
	CreatedAt  time.Time
}

type AuditFilter struct {
	Action string
	Limit  int
}
