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
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

// NotificationService covers the notifications table and the reminder
// tracking rows. Tracking rows are only reachable through tasks the caller
// owns.
type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager) *NotificationService {
	return &NotificationService{db: db, repomanager: m}
}

func (s *NotificationService) ownsTask(ctx context.Context, caller models.Caller, taskID string) error {
	_, err := s.repomanager.Tasks(s.db).Get(ctx, caller.UserID, taskID)
	return err
}

func (s *NotificationService) Create(ctx context.Context, caller models.Caller, n *models.Notification) (*models.Notification, error) {
	if strings.TrimSpace(n.Type) == "" || strings.TrimSpace(n.Title) == "" {
		return nil, validationError("type and title are required")
	}
	if n.TaskID != nil && *n.TaskID != "" {
		if err := s.ownsTask(ctx, caller, *n.TaskID); err != nil {
			return nil, err
		}
	}

	return s.repomanager.Notifications(s.db).Create(ctx, &models.Notification{
		UserID:  caller.UserID,
		TaskID:  n.TaskID,
		Type:    n.Type,
		Title:   n.Title,
		Message: n.Message,
	})
}

func (s *NotificationService) List(ctx context.Context, caller models.Caller, filter models.NotificationFilter) ([]*models.Notification, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultNotificationLimit
	case filter.Limit > MaxNotificationLimit:
		filter.Limit = MaxNotificationLimit
	}
	return s.repomanager.Notifications(s.db).List(ctx, caller.UserID, filter)
}

func (s *NotificationService) MarkRead(ctx context.Context, caller models.Caller, id string) error {
	return s.repomanager.Notifications(s.db).MarkRead(ctx, caller.UserID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, caller models.Caller) (int64, error) {
	return s.repomanager.Notifications(s.db).MarkAllRead(ctx, caller.UserID)
}

func (s *NotificationService) Delete(ctx context.Context, caller models.Caller, id string) error {
	return s.repomanager.Notifications(s.db).Delete(ctx, caller.UserID, id)
}

func validateTracking(t models.Tracking) error {
	if t.TaskID == "" || t.NotificationType == "" {
		return validationError("task id and notification type are required")
	}
	if _, err := time.Parse(dateLayout, t.SentDate); err != nil {
		return validationError("sent date must be YYYY-MM-DD")
	}
	return nil
}

func (s *NotificationService) FindTracking(ctx context.Context, caller models.Caller, t models.Tracking) (bool, error) {
	if err := validateTracking(t); err != nil {
		return false, err
	}
	if err := s.ownsTask(ctx, caller, t.TaskID); err != nil {
		return false, err
	}
	return s.repomanager.Tracking(s.db).Exists(ctx, t)
}

// InsertTracking appends a tracking row. No uniqueness check is made here.
func (s *NotificationService) InsertTracking(ctx context.Context, caller models.Caller, t models.Tracking) error {
	if err := validateTracking(t); err != nil {
		return err
	}
	if err := s.ownsTask(ctx, caller, t.TaskID); err != nil {
		return err
	}
	return s.repomanager.Tracking(s.db).Create(ctx, t)
}
