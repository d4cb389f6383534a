// Package tasks stores personal tasks. Every query is scoped by user id.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	// List returns the user's tasks newest first.
	List(ctx context.Context, userID string, filter models.TaskFilter) ([]*models.Task, error)
	Get(ctx context.Context, userID, id string) (*models.Task, error)
	// Update applies patch and returns the updated row; common.ErrorNotFound
	// when the task does not exist or belongs to someone else.
	Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
}
