package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-wrike-export/internal/model"
)

func newMockRepo(t *testing.T) (*PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresRepo{DB: db}, mock
}

func TestRunMigrations(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS admins`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS export_runs`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS export_runs_started_at_idx`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RunMigrations(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsStopsOnError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`CREATE EXTENSION`).WillReturnError(errors.New("permission denied"))

	assert.Error(t, repo.RunMigrations(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAdminByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, username, password_hash, created_at\s+FROM admins`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("a-1", "admin", "hash", created))

	a, err := repo.GetAdminByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, &model.Admin{ID: "a-1", Username: "admin", PasswordHash: "hash", CreatedAt: created}, a)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAdminByUsernameNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM admins`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAdminByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertAdmin(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO admins`).WithArgs("admin", "hash").WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpsertAdmin(context.Background(), "admin", "hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdmin(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`(?s)INSERT INTO admins .+ON CONFLICT \(username\) DO NOTHING`).
		WithArgs("admin", "hash").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)INSERT INTO admins .+ON CONFLICT \(username\) DO NOTHING`).
		WithArgs("admin", "other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateAdmin(context.Background(), "admin", "hash")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateAdmin(context.Background(), "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun(t *testing.T) {
	repo, mock := newMockRepo(t)
	started := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(3 * time.Second)
	run := &model.ExportRun{
		ID:              "0b8f2c3e-1111-4a4a-9c9c-000000000001",
		Stage:           "done",
		Status:          model.RunStatusDone,
		ProjectCount:    2,
		TaskCount:       5,
		UserCount:       3,
		UnassignedTasks: 1,
		ProjectIDs:      pq.StringArray{"P1", "P2"},
		Destination:     "out.json",
		StartedAt:       started,
		FinishedAt:      finished,
	}

	mock.ExpectExec(`INSERT INTO export_runs`).
		WithArgs(run.ID, "done", "done", "", 0, 2, 5, 3, 1, `{"P1","P2"}`, "out.json", started, finished).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.RecordRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunNilProjectIDs(t *testing.T) {
	repo, mock := newMockRepo(t)
	run := &model.ExportRun{ID: "r", Stage: "fetch_tasks", Status: model.RunStatusFailed, Error: "boom", HTTPStatus: 401}

	mock.ExpectExec(`INSERT INTO export_runs`).
		WithArgs("r", "fetch_tasks", "failed", "boom", 401, 0, 0, 0, 0, "{}", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.RecordRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO export_runs`).WillReturnError(errors.New("conn reset"))

	err := repo.RecordRun(context.Background(), &model.ExportRun{ID: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record export run r")
}
