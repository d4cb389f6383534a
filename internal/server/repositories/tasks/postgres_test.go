package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskCols = []string{"id", "user_id", "title", "description", "due_date", "due_time", "is_completed", "is_archived", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestCreate_WithAndWithoutDueDate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+task\s*\(user_id,\s*title,\s*description,\s*due_date,\s*due_time\).*RETURNING\s+id,`
	now := time.Now()

	mock.ExpectQuery(q).
		WithArgs("u1", "Buy milk", "", "2024-05-01", nil).
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow("t1", "u1", "Buy milk", "", "2024-05-01", nil, false, false, now))
	mock.ExpectQuery(q).
		WithArgs("u1", "Someday", "maybe", nil, nil).
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow("t2", "u1", "Someday", "maybe", nil, nil, false, false, now))

	got, err := repo.Create(context.Background(), &models.Task{UserID: "u1", Title: "Buy milk", DueDate: strp("2024-05-01")})
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2024-05-01", *got.DueDate)
	assert.Nil(t, got.DueTime)

	got, err = repo.Create(context.Background(), &models.Task{UserID: "u1", Title: "Someday", Description: "maybe", DueDate: strp("")})
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_PendingFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+task\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+due_date\s+IS\s+NOT\s+NULL\s+AND\s+is_completed\s*=\s*false\s+AND\s+is_archived\s*=\s*false\s+ORDER\s+BY\s+created_at\s+DESC$`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow("t1", "u1", "Pay rent", "", "2024-05-01", "09:30:00", false, false, time.Now()))

	list, err := repo.List(context.Background(), "u1", models.TaskFilter{Pending: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "09:30:00", *list[0].DueTime)
}

func TestList_All(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+task\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(taskCols))

	list, err := repo.List(context.Background(), "u1", models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`).
		WithArgs("t9", "u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "u1", "t9")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_BuildsSetClause(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+task\s+SET\s+title\s*=\s*\$3,\s*due_date\s*=\s*\$4,\s*is_archived\s*=\s*\$5\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING`).
		WithArgs("t1", "u1", "Buy bread", nil, true).
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow("t1", "u1", "Buy bread", "", nil, nil, false, true, time.Now()))

	got, err := repo.Update(context.Background(), "u1", "t1", models.TaskPatch{
		Title:      strp("Buy bread"),
		DueDate:    strp(""),
		IsArchived: boolp(true),
	})
	require.NoError(t, err)
	assert.True(t, got.IsArchived)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.DueDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_ForeignTaskIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^UPDATE\s+task\s+SET\s+is_completed\s*=\s*\$3`).
		WithArgs("t1", "intruder", true).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "intruder", "t1", models.TaskPatch{IsCompleted: boolp(true)})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_EmptyPatchReads(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT`).WithArgs("t1", "u1").WillReturnError(errors.New("down"))

	_, err := repo.Update(context.Background(), "u1", "t1", models.TaskPatch{})
	assert.ErrorContains(t, err, "db error: down")
}
