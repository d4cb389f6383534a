package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// TaskService manages the caller's own tasks.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// normalizeDueDate accepts nil, "" (no date) or YYYY-MM-DD.
func normalizeDueDate(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return &v, nil
	}
	if _, err := time.Parse(dateLayout, v); err != nil {
		return nil, validationError("due date must be YYYY-MM-DD")
	}
	return &v, nil
}

// normalizeDueTime accepts nil, "" (no time), HH:MM or HH:MM:SS and returns
// HH:MM:SS.
func normalizeDueTime(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return &v, nil
	}
	for _, layout := range []string{timeLayout, "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			out := t.Format(timeLayout)
			return &out, nil
		}
	}
	return nil, validationError("due time must be HH:MM or HH:MM:SS")
}

func (s *TaskService) Create(ctx context.Context, caller models.Caller, t *models.Task) (*models.Task, error) {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return nil, validationError("title is required")
	}

	dueDate, err := normalizeDueDate(t.DueDate)
	if err != nil {
		return nil, err
	}
	dueTime, err := normalizeDueTime(t.DueTime)
	if err != nil {
		return nil, err
	}

	return s.repomanager.Tasks(s.db).Create(ctx, &models.Task{
		UserID:      caller.UserID,
		Title:       title,
		Description: strings.TrimSpace(t.Description),
		DueDate:     dueDate,
		DueTime:     dueTime,
	})
}

func (s *TaskService) List(ctx context.Context, caller models.Caller, filter models.TaskFilter) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).List(ctx, caller.UserID, filter)
}

func (s *TaskService) Update(ctx context.Context, caller models.Caller, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationError("title is required")
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		patch.Description = &d
	}

	var err error
	if patch.DueDate, err = normalizeDueDate(patch.DueDate); err != nil {
		return nil, err
	}
	if patch.DueTime, err = normalizeDueTime(patch.DueTime); err != nil {
		return nil, err
	}

	return s.repomanager.Tasks(s.db).Update(ctx, caller.UserID, id, patch)
}
