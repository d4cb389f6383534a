// Package profiles stores usernames and roles.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	// ListNonAdmin returns every profile whose role is not admin, newest first.
	ListNonAdmin(ctx context.Context) ([]*models.Profile, error)
	UpdateUsername(ctx context.Context, id, username string) error
	Delete(ctx context.Context, id string) error
}
