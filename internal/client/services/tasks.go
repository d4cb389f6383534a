package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
)

// TaskInput is what the user typed. Empty DueDate or DueTime means none.
type TaskInput struct {
	Title       string
	Description string
	DueDate     string
	DueTime     string
}

func (in TaskInput) normalize() (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DueDate = strings.TrimSpace(in.DueDate)
	in.DueTime = strings.TrimSpace(in.DueTime)

	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", client.ErrValidation)
	}
	if in.DueDate != "" {
		if _, err := time.Parse(time.DateOnly, in.DueDate); err != nil {
			return in, fmt.Errorf("%w: due date must be YYYY-MM-DD", client.ErrValidation)
		}
	}
	if in.DueTime != "" {
		clock, err := parseClock(in.DueTime)
		if err != nil {
			return in, fmt.Errorf("%w: due time must be HH:MM or HH:MM:SS", client.ErrValidation)
		}
		// stored times come back as HH:MM:SS
		in.DueTime = clock.Format(time.TimeOnly)
	}
	return in, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type TaskService struct {
	client client.Client
	audit  *AuditLogger
}

func NewTaskService(c client.Client, a *AuditLogger) *TaskService {
	return &TaskService{client: c, audit: a}
}

// List returns the caller's tasks newest first.
func (s *TaskService) List(ctx context.Context) ([]*models.Task, error) {
	return s.client.ListTasks(ctx, false)
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (*models.Task, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	t, err := s.client.CreateTask(ctx, &models.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     optional(in.DueDate),
		DueTime:     optional(in.DueTime),
	})
	if err != nil {
		return nil, err
	}

	s.audit.CreateTask(ctx, t.ID, t.Title)
	return t, nil
}

// Edit replaces the editable fields of current with in and records the
// difference in the audit trail.
func (s *TaskService) Edit(ctx context.Context, current *models.Task, in TaskInput) (*models.Task, Changes, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, nil, err
	}

	proposed := *current
	proposed.Title = in.Title
	proposed.Description = in.Description
	proposed.DueDate = optional(in.DueDate)
	proposed.DueTime = optional(in.DueTime)
	changes := TaskChanges(current, &proposed)

	t, err := s.client.UpdateTask(ctx, current.ID, models.TaskPatch{
		Title:       &in.Title,
		Description: &in.Description,
		DueDate:     &in.DueDate,
		DueTime:     &in.DueTime,
	})
	if err != nil {
		return nil, nil, err
	}

	s.audit.EditTask(ctx, t.ID, t.Title, changes)
	return t, changes, nil
}

func (s *TaskService) Finish(ctx context.Context, current *models.Task) (*models.Task, error) {
	done := true
	t, err := s.client.UpdateTask(ctx, current.ID, models.TaskPatch{IsCompleted: &done})
	if err != nil {
		return nil, err
	}
	s.audit.FinishTask(ctx, t.ID, t.Title)
	return t, nil
}

// Archive hides the task from the active lists. Completion is untouched.
func (s *TaskService) Archive(ctx context.Context, current *models.Task) (*models.Task, error) {
	archived := true
	t, err := s.client.UpdateTask(ctx, current.ID, models.TaskPatch{IsArchived: &archived})
	if err != nil {
		return nil, err
	}
	s.audit.ArchiveTask(ctx, t.ID, t.Title)
	return t, nil
}

// Board is the task list split into dashboard sections, each keeping the
// input order.
type Board struct {
	Active   []*models.Task
	Finished []*models.Task
	Archived []*models.Task
}

func Split(tasks []*models.Task) Board {
	var b Board
	for _, t := range tasks {
		switch t.Section() {
		case models.SectionActive:
			b.Active = append(b.Active, t)
		case models.SectionFinished:
			b.Finished = append(b.Finished, t)
		case models.SectionArchived:
			b.Archived = append(b.Archived, t)
		}
	}
	return b
}

func (b Board) Section(s models.Section) []*models.Task {
	switch s {
	case models.SectionFinished:
		return b.Finished
	case models.SectionArchived:
		return b.Archived
	default:
		return b.Active
	}
}
