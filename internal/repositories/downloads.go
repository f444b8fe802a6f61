package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
)

// DownloadRepository persists [models.DownloadRecord] rows.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts rec, generating an ID and timestamp when they are unset.
// An empty RunID is stored as NULL.
func (r *DownloadRepository) Create(ctx context.Context, rec *models.DownloadRecord) error {
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}
	if rec.DownloadedAt.IsZero() {
		rec.DownloadedAt = time.Now()
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO downloads (id, run_id, identity, source_id, title, artist, album, playlist, path, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var runID any = rec.RunID
	if rec.RunID == "" {
		runID = nil
	}

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		runID,
		rec.Identity,
		rec.SourceID,
		rec.Title,
		rec.Artist,
		rec.Album,
		rec.Playlist,
		rec.Path,
		rec.DownloadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}
	return nil
}

// Recent lists the newest downloads first.
func (r *DownloadRepository) Recent(ctx context.Context, limit int) ([]*models.DownloadRecord, error) {
	query := `
		SELECT id, run_id, identity, source_id, title, artist, album, playlist, path, downloaded_at
		FROM downloads
		ORDER BY downloaded_at DESC
		LIMIT ?
	`
	return r.list(ctx, query, normalizeLimit(limit))
}

// ByRun lists the downloads recorded under runID in the order they were written.
func (r *DownloadRepository) ByRun(ctx context.Context, runID string) ([]*models.DownloadRecord, error) {
	query := `
		SELECT id, run_id, identity, source_id, title, artist, album, playlist, path, downloaded_at
		FROM downloads
		WHERE run_id = ?
		ORDER BY downloaded_at ASC
	`
	return r.list(ctx, query, runID)
}

// ByIdentity lists every recorded download of one identity, newest first.
func (r *DownloadRepository) ByIdentity(ctx context.Context, identity string) ([]*models.DownloadRecord, error) {
	query := `
		SELECT id, run_id, identity, source_id, title, artist, album, playlist, path, downloaded_at
		FROM downloads
		WHERE identity = ?
		ORDER BY downloaded_at DESC
	`
	return r.list(ctx, query, identity)
}

// Count returns the number of recorded downloads.
func (r *DownloadRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM downloads").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count downloads: %w", err)
	}
	return n, nil
}

func (r *DownloadRepository) list(ctx context.Context, query string, args ...any) ([]*models.DownloadRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var records []*models.DownloadRecord
	for rows.Next() {
		rec, err := scanDownload(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

func scanDownload(s scanner) (*models.DownloadRecord, error) {
	var (
		rec   models.DownloadRecord
		runID sql.NullString
	)

	err := s.Scan(
		&rec.ID,
		&runID,
		&rec.Identity,
		&rec.SourceID,
		&rec.Title,
		&rec.Artist,
		&rec.Album,
		&rec.Playlist,
		&rec.Path,
		&rec.DownloadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	rec.RunID = runID.String
	return &rec, nil
}
