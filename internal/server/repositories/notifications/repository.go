// Package notifications stores in-app notifications. Every query is scoped by
// user id.
package notifications

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	// List returns notifications newest first, at most filter.Limit rows.
	List(ctx context.Context, userID string, filter models.NotificationFilter) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	// MarkAllRead flips every unread row of the user and returns the count.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}
