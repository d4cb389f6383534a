package models

import "time"

// Task mirrors the backend row. DueDate is YYYY-MM-DD, DueTime HH:MM:SS.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	DueDate     *string
	DueTime     *string
	IsCompleted bool
	IsArchived  bool
	CreatedAt   time.Time
}

// TaskPatch lists fields to change; nil means unchanged and a pointer to ""
// clears DueDate or DueTime.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *string
	DueTime     *string
	IsCompleted *bool
	IsArchived  *bool
}

type Section string

const (
	SectionActive   Section = "active"
	SectionFinished Section = "finished"
	SectionArchived Section = "archived"
)

// Section places the task on one of the dashboard lists. Archived wins
// over finished.
func (t *Task) Section() Section {
	switch {
	case t.IsArchived:
		return SectionArchived
	case t.IsCompleted:
		return SectionFinished
	default:
		return SectionActive
	}
}

// Value returns *p or "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
