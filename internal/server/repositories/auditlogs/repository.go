// Package auditlogs stores the append-only audit trail.
package auditlogs

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.AuditLogEntry) (*models.AuditLogEntry, error)
	// List returns entries newest first, optionally narrowed to one action.
	List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLogEntry, error)
}
