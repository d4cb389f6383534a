// Package services holds the client's application logic on top of the
// backend Client: account and session handling, tasks, notifications,
// reminders, the audit trail and administration.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/effect"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

// Audit actions.
const (
	ActionLogin       = "login"
	ActionLogout      = "logout"
	ActionCreateTask  = "create_task"
	ActionEditTask    = "edit_task"
	ActionFinishTask  = "finish_task"
	ActionArchiveTask = "archive_task"
)

const entityTask = "task"

type AuditOptions struct {
	EntityType string
	EntityID   string
	Details    map[string]any
	// Username overrides the name looked up from the profile.
	Username string
}

// AuditLogger appends rows to the audit trail. Writes are best-effort:
// they run on the effect runner and failures are only logged.
type AuditLogger struct {
	client client.Client
	runner *effect.Runner
	logger logging.Logger
	now    func() time.Time
}

func NewAuditLogger(c client.Client, r *effect.Runner, l logging.Logger) *AuditLogger {
	return &AuditLogger{client: c, runner: r, logger: l.With("module", "audit"), now: time.Now}
}

// LogEvent records action for the signed-in user. It returns immediately.
func (a *AuditLogger) LogEvent(ctx context.Context, action string, opts AuditOptions) {
	createdAt := a.now()
	a.runner.Go(ctx, "audit:"+action, func(ctx context.Context) error {
		return a.write(ctx, action, opts, createdAt)
	})
}

func (a *AuditLogger) write(ctx context.Context, action string, opts AuditOptions, createdAt time.Time) error {
	user, err := a.client.GetUser(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		a.logger.Warn(ctx, "cannot log audit event: no user authenticated", "action", action)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	username := opts.Username
	if username == "" {
		username = user.Username
	}
	if username == "" {
		username = user.Email
	}
	if username == "" {
		username = "Unknown"
	}

	details := opts.Details
	if details == nil {
		details = map[string]any{}
	}

	entry := &models.AuditEntry{
		Username:  username,
		Action:    action,
		Details:   details,
		CreatedAt: createdAt,
	}
	if opts.EntityType != "" {
		entry.EntityType = &opts.EntityType
	}
	if opts.EntityID != "" {
		entry.EntityID = &opts.EntityID
	}

	if err := a.client.InsertAuditLog(ctx, entry); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (a *AuditLogger) Login(ctx context.Context, username string) {
	a.LogEvent(ctx, ActionLogin, AuditOptions{
		Username: username,
		Details:  map[string]any{"timestamp": a.now().UTC().Format(time.RFC3339)},
	})
}

func (a *AuditLogger) Logout(ctx context.Context, username string) {
	a.LogEvent(ctx, ActionLogout, AuditOptions{
		Username: username,
		Details:  map[string]any{"timestamp": a.now().UTC().Format(time.RFC3339)},
	})
}

func (a *AuditLogger) CreateTask(ctx context.Context, id, title string) {
	a.LogEvent(ctx, ActionCreateTask, AuditOptions{EntityType: entityTask, EntityID: id, Details: map[string]any{"title": title}})
}

func (a *AuditLogger) EditTask(ctx context.Context, id, title string, changes Changes) {
	a.LogEvent(ctx, ActionEditTask, AuditOptions{
		EntityType: entityTask,
		EntityID:   id,
		Details:    map[string]any{"title": title, "changes": changes},
	})
}

func (a *AuditLogger) FinishTask(ctx context.Context, id, title string) {
	a.LogEvent(ctx, ActionFinishTask, AuditOptions{EntityType: entityTask, EntityID: id, Details: map[string]any{"title": title}})
}

func (a *AuditLogger) ArchiveTask(ctx context.Context, id, title string) {
	a.LogEvent(ctx, ActionArchiveTask, AuditOptions{EntityType: entityTask, EntityID: id, Details: map[string]any{"title": title}})
}

// Change is one edited field.
type Change struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Changes maps field name to its change.
type Changes map[string]Change

// TaskChanges compares the editable fields of two task versions. Missing
// optional values compare as "".
func TaskChanges(before, after *models.Task) Changes {
	changes := Changes{}
	add := func(field, from, to string) {
		if from != to {
			changes[field] = Change{From: from, To: to}
		}
	}
	add("title", before.Title, after.Title)
	add("description", before.Description, after.Description)
	add("due_date", models.Value(before.DueDate), models.Value(after.DueDate))
	add("due_time", models.Value(before.DueTime), models.Value(after.DueTime))
	return changes
}
