package auditlogs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

// DefaultLimit caps listings that do not ask for a specific size.
const DefaultLimit = 500

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.AuditLogEntry) (*models.AuditLogEntry, error) {
	query := `INSERT INTO audit_logs (user_id, username, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	details := "{}"
	if len(e.Details) > 0 {
		details = string(e.Details)
	}

	err := r.db.QueryRowContext(ctx, query,
		e.UserID, e.Username, e.Action, e.EntityType, e.EntityID, details, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLogEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, user_id, username, action, entity_type, entity_id, details, created_at
		FROM audit_logs`
	args := []any{limit}
	if filter.Action != "" {
		query += ` WHERE action = $2`
		args = append(args, filter.Action)
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	list, err := dbx.Collect(rows, func(rows *sql.Rows) (*models.AuditLogEntry, error) {
		e := &models.AuditLogEntry{}
		var entityType, entityID sql.NullString
		var details []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Action, &entityType, &entityID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if entityType.Valid {
			e.EntityType = &entityType.String
		}
		if entityID.Valid {
			e.EntityID = &entityID.String
		}
		e.Details = details
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}
