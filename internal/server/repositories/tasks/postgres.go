package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

const taskColumns = `id, user_id, title, description,
		to_char(due_date, 'YYYY-MM-DD'), to_char(due_time, 'HH24:MI:SS'),
		is_completed, is_archived, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	t := &models.Task{}
	var dueDate, dueTime sql.NullString
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &dueDate, &dueTime,
		&t.IsCompleted, &t.IsArchived, &t.CreatedAt); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	if dueTime.Valid {
		t.DueTime = &dueTime.String
	}
	return t, nil
}

// nullable maps nil and "" to SQL NULL.
func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	query := `INSERT INTO task (user_id, title, description, due_date, due_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns

	created, err := scanTask(r.db.QueryRowContext(ctx, query,
		t.UserID, t.Title, t.Description, nullable(t.DueDate), nullable(t.DueTime)))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter models.TaskFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE user_id = $1`
	if filter.Pending {
		query += ` AND due_date IS NOT NULL AND is_completed = false AND is_archived = false`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	list, err := dbx.Collect(rows, func(rows *sql.Rows) (*models.Task, error) {
		return scanTask(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE id = $1 AND user_id = $2`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return r.Get(ctx, userID, id)
	}

	args := []any{id, userID}
	var sets []string
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.DueDate != nil {
		set("due_date", nullable(patch.DueDate))
	}
	if patch.DueTime != nil {
		set("due_time", nullable(patch.DueTime))
	}
	if patch.IsCompleted != nil {
		set("is_completed", *patch.IsCompleted)
	}
	if patch.IsArchived != nil {
		set("is_archived", *patch.IsArchived)
	}

	query := `UPDATE task SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + taskColumns

	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
