package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

const (
	notificationColumns = `id, user_id, task_id, type, title, message, read, created_at`
	defaultLimit        = 50
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanNotification(row interface{ Scan(...any) error }) (*models.Notification, error) {
	n := &models.Notification{}
	var taskID sql.NullString
	if err := row.Scan(&n.ID, &n.UserID, &taskID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	if taskID.Valid {
		n.TaskID = &taskID.String
	}
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `INSERT INTO notifications (user_id, task_id, type, title, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + notificationColumns

	var taskID any
	if n.TaskID != nil && *n.TaskID != "" {
		taskID = *n.TaskID
	}

	created, err := scanNotification(r.db.QueryRowContext(ctx, query, n.UserID, taskID, n.Type, n.Title, n.Message))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter models.NotificationFilter) ([]*models.Notification, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if filter.UnreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	list, err := dbx.Collect(rows, func(rows *sql.Rows) (*models.Notification, error) {
		return scanNotification(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, userID, id string) error {
	return r.execOne(ctx, `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	return r.execOne(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
