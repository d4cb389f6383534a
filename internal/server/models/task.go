package models

import "time"

// Task is a personal to-do item. DueDate is YYYY-MM-DD and DueTime is
// HH:MM:SS when set.
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

// TaskPatch lists the columns to change. A DueDate or DueTime pointing at
// an empty string sets the column to NULL.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *string
	DueTime     *string
	IsCompleted *bool
	IsArchived  *bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.DueTime == nil && p.IsCompleted == nil && p.IsArchived == nil
}

// TaskFilter narrows a task listing. Pending selects tasks that have a due
// date and are neither completed nor archived.
type TaskFilter struct {
	Pending bool
}
