// Package models holds the client-side view of Taskboard data as returned
// by the backend.
package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID       string
	Email    string
	Username string
	Role     string
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == "admin" }

type Profile struct {
	ID        string
	Username  string
	Role      string
	Email     string
	CreatedAt time.Time
}

type Notification struct {
	ID        string
	TaskID    *string
	Type      string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// NewNotification is the payload for creating a notification for the
// signed-in user.
type NewNotification struct {
	TaskID  *string
	Type    string
	Title   string
	Message string
}

// Tracking marks that a notification of NotificationType went out for
// TaskID on SentDate (YYYY-MM-DD, viewer's local date).
type Tracking struct {
	TaskID           string
	NotificationType string
	SentDate         string
}

// AuditEntry is a row to append to the audit trail.
type AuditEntry struct {
	Username   string
	Action     string
	EntityType *string
	EntityID   *string
	Details    map[string]any
	CreatedAt  time.Time
}

// AuditLogEntry is a stored audit row as listed by administrators.
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

type ExportResult struct {
	Key   string
	URL   string
	Count int
}
