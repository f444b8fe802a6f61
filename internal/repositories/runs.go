package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("sync run not found")

// RunRepository persists [models.SyncRun] rows.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts run, generating an ID and start time when they are unset.
func (r *RunRepository) Create(ctx context.Context, run *models.SyncRun) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Mode == "" {
		return fmt.Errorf("validation failed: run mode is required")
	}

	query := `
		INSERT INTO sync_runs (id, mode, target, started_at, finished_at, planned, downloaded, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var finishedAt any
	if run.FinishedAt != nil {
		finishedAt = *run.FinishedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Mode,
		run.Target,
		run.StartedAt,
		finishedAt,
		run.Planned,
		run.Downloaded,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish stamps the run's end time and final counters.
func (r *RunRepository) Finish(ctx context.Context, id string, planned, downloaded, failed int) error {
	query := `
		UPDATE sync_runs
		SET finished_at = ?, planned = ?, downloaded = ?, failed = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), planned, downloaded, failed, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.SyncRun, error) {
	query := `
		SELECT id, mode, target, started_at, finished_at, planned, downloaded, failed
		FROM sync_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Recent lists the newest runs first.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]*models.SyncRun, error) {
	query := `
		SELECT id, mode, target, started_at, finished_at, planned, downloaded, failed
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

func scanRun(s scanner) (*models.SyncRun, error) {
	var (
		run        models.SyncRun
		finishedAt sql.NullTime
	)

	err := s.Scan(
		&run.ID,
		&run.Mode,
		&run.Target,
		&run.StartedAt,
		&finishedAt,
		&run.Planned,
		&run.Downloaded,
		&run.Failed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
