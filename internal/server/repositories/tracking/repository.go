// Package tracking stores which reminder kinds were already sent for a task
// on a given day.
package tracking

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	Exists(ctx context.Context, t models.Tracking) (bool, error)
	// Create appends a row. Duplicates are not rejected.
	Create(ctx context.Context, t models.Tracking) error
}
