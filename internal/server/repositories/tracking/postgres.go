package tracking

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, t models.Tracking) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM notification_tracking
		WHERE task_id = $1 AND notification_type = $2 AND sent_date = $3)`

	var found bool
	if err := r.db.QueryRowContext(ctx, query, t.TaskID, t.NotificationType, t.SentDate).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t models.Tracking) error {
	query := `INSERT INTO notification_tracking (task_id, notification_type, sent_date)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, t.TaskID, t.NotificationType, t.SentDate); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
