package models

import "time"

type Notification struct {
	ID        string
	UserID    string
	TaskID    *string
	Type      string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}

// Tracking records that a notification of Type was sent for TaskID on
// SentDate (YYYY-MM-DD in the viewer's zone).
type Tracking struct {
	TaskID           string
	NotificationType string
	SentDate         string
}
