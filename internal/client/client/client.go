// Package client is the client side of the Taskboard wire: a Client
// interface over the backend and its gRPC implementation with automatic
// access-token refresh.
package client

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
)

// Client is the backend as seen by the terminal application. Authenticated
// calls made without a session fail with ErrUnauthorized without reaching
// the server.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email, password, username string) error
	SignIn(ctx context.Context, email, password string) error
	// Resume exchanges a stored refresh token for a fresh session.
	Resume(ctx context.Context, refreshToken string) error
	SignOut(ctx context.Context) error
	HasSession() bool
	// SetTokenObserver registers fn to receive every new refresh token,
	// including rotations done behind the caller's back, and "" when the
	// session ends.
	SetTokenObserver(fn func(refreshToken string))

	GetUser(ctx context.Context) (*models.User, error)
	UpdatePassword(ctx context.Context, password string) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id, username string) error
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	DeleteProfile(ctx context.Context, id string) error

	CreateTask(ctx context.Context, t *models.Task) (*models.Task, error)
	ListTasks(ctx context.Context, pending bool) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error)

	CreateNotification(ctx context.Context, n models.NewNotification) (*models.Notification, error)
	ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) (int64, error)
	DeleteNotification(ctx context.Context, id string) error
	FindTracking(ctx context.Context, t models.Tracking) (bool, error)
	InsertTracking(ctx context.Context, t models.Tracking) error

	InsertAuditLog(ctx context.Context, e *models.AuditEntry) error
	ListAuditLogs(ctx context.Context, action string, limit int) ([]*models.AuditLogEntry, error)
	ExportAuditLogs(ctx context.Context, action string) (*models.ExportResult, error)
}
