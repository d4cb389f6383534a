package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/notify"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

const (
	fetchLimit       = 50
	notificationIcon = "/logo192.png"
)

type FetchOptions struct {
	UnreadOnly bool
}

// NotificationService reads and updates the signed-in user's notifications.
// Apart from Create, every method is best-effort: failures are logged and
// a neutral result is returned.
type NotificationService struct {
	client      client.Client
	permissions *notify.Permissions
	logger      logging.Logger
}

func NewNotificationService(c client.Client, p *notify.Permissions, l logging.Logger) *NotificationService {
	return &NotificationService{client: c, permissions: p, logger: l.With("module", "notifications")}
}

func (s *NotificationService) failed(ctx context.Context, msg string, err error, args ...any) {
	if errors.Is(err, client.ErrUnauthorized) {
		return
	}
	s.logger.Error(ctx, msg, append(args, "error", err)...)
}

// Fetch returns up to 50 notifications, newest first.
func (s *NotificationService) Fetch(ctx context.Context, opts FetchOptions) []*models.Notification {
	if !s.client.HasSession() {
		return []*models.Notification{}
	}
	list, err := s.client.ListNotifications(ctx, opts.UnreadOnly, fetchLimit)
	if err != nil {
		s.failed(ctx, "fetch notifications", err)
		return []*models.Notification{}
	}
	return list
}

func (s *NotificationService) UnreadCount(ctx context.Context) int {
	return len(s.Fetch(ctx, FetchOptions{UnreadOnly: true}))
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) {
	if err := s.client.MarkNotificationRead(ctx, id); err != nil {
		s.failed(ctx, "mark notification read", err, "id", id)
	}
}

// MarkAllRead marks every unread notification read and returns how many
// changed.
func (s *NotificationService) MarkAllRead(ctx context.Context) int64 {
	if !s.client.HasSession() {
		return 0
	}
	n, err := s.client.MarkAllNotificationsRead(ctx)
	if err != nil {
		s.failed(ctx, "mark all notifications read", err)
		return 0
	}
	return n
}

func (s *NotificationService) Delete(ctx context.Context, id string) {
	if err := s.client.DeleteNotification(ctx, id); err != nil {
		s.failed(ctx, "delete notification", err, "id", id)
	}
}

// Create stores a notification for the signed-in user and shows it on the
// device when allowed.
func (s *NotificationService) Create(ctx context.Context, n models.NewNotification) (*models.Notification, error) {
	if n.Type == "" {
		n.Type = "system"
	}
	created, err := s.client.CreateNotification(ctx, n)
	if err != nil {
		s.failed(ctx, "create notification", err)
		return nil, err
	}

	tag := "notification"
	if n.TaskID != nil && *n.TaskID != "" {
		tag = *n.TaskID
	}
	_, err = s.permissions.Show(ctx, notify.Notification{
		Title: n.Title,
		Body:  n.Message,
		Icon:  notificationIcon,
		Tag:   tag,
	})
	if err != nil {
		s.logger.Warn(ctx, "show notification", "error", err)
	}
	return created, nil
}

func (s *NotificationService) RequestPermission(ctx context.Context) bool {
	ok, err := s.permissions.Request(ctx)
	if err != nil {
		s.logger.Warn(ctx, "request notification permission", "error", err)
	}
	return ok
}
