package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roksva123/go-wrike-export/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo opens and pings the database at dsn.
func NewPostgresRepo(ctx context.Context, dsn string) (*PostgresRepo, error) {
	if dsn == "" {
		return nil, errors.New("database url not configured")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepo{DB: db}, nil
}

func (r *PostgresRepo) Close() error {
	return r.DB.Close()
}

// Gorm wraps the open connection for query-builder reads.
func (r *PostgresRepo) Gorm() (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: r.DB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func (r *PostgresRepo) RunMigrations(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
		`CREATE TABLE IF NOT EXISTS admins (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS export_runs (
			id UUID PRIMARY KEY,
			stage TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			http_status INTEGER,
			project_count INTEGER NOT NULL DEFAULT 0,
			task_count INTEGER NOT NULL DEFAULT 0,
			user_count INTEGER NOT NULL DEFAULT 0,
			unassigned_tasks INTEGER NOT NULL DEFAULT 0,
			project_ids TEXT[] NOT NULL DEFAULT '{}',
			destination TEXT,
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			finished_at TIMESTAMP WITH TIME ZONE
		);`,
		`CREATE INDEX IF NOT EXISTS export_runs_started_at_idx ON export_runs (started_at DESC);`,
	}
	for _, q := range queries {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepo) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM admins
		WHERE username = $1
		LIMIT 1
	`, username)

	var a model.Admin
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepo) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO admins (username, password_hash) VALUES ($1,$2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, username, passwordHash)
	return err
}

// CreateAdmin inserts the admin unless the username already exists. It
// reports whether a row was written; an existing password is left alone.
func (r *PostgresRepo) CreateAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO admins (username, password_hash) VALUES ($1,$2)
		ON CONFLICT (username) DO NOTHING
	`, username, passwordHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordRun stores the summary of an export run, replacing an earlier row
// with the same id.
func (r *PostgresRepo) RecordRun(ctx context.Context, run *model.ExportRun) error {
	projectIDs := run.ProjectIDs
	if projectIDs == nil {
		projectIDs = []string{}
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO export_runs (
			id, stage, status, error, http_status,
			project_count, task_count, user_count, unassigned_tasks,
			project_ids, destination, started_at, finished_at
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,$9,
			$10,$11,$12,$13
		)
		ON CONFLICT (id) DO UPDATE SET
			stage = EXCLUDED.stage,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			http_status = EXCLUDED.http_status,
			project_count = EXCLUDED.project_count,
			task_count = EXCLUDED.task_count,
			user_count = EXCLUDED.user_count,
			unassigned_tasks = EXCLUDED.unassigned_tasks,
			project_ids = EXCLUDED.project_ids,
			destination = EXCLUDED.destination,
			finished_at = EXCLUDED.finished_at
	`,
		run.ID, run.Stage, run.Status, run.Error, run.HTTPStatus,
		run.ProjectCount, run.TaskCount, run.UserCount, run.UnassignedTasks,
		projectIDs, run.Destination, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("record export run %s: %w", run.ID, err)
	}
	return nil
}
