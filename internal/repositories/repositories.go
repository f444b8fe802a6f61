package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// DefaultLimit bounds list queries when the caller passes a non-positive limit.
const DefaultLimit = 20

func normalizeLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	return limit
}

// HistoryRecorder records downloads of a single run.
//
// It satisfies the recorder expected by the download engine, stamping every record with RunID.
type HistoryRecorder struct {
	downloads *DownloadRepository
	runID     string
}

// NewHistoryRecorder creates a recorder that attaches every record to runID.
func NewHistoryRecorder(downloads *DownloadRepository, runID string) *HistoryRecorder {
	return &HistoryRecorder{downloads: downloads, runID: runID}
}

// RunID returns the run the recorder writes into.
func (h *HistoryRecorder) RunID() string { return h.runID }

// RecordDownload persists rec under the recorder's run.
func (h *HistoryRecorder) RecordDownload(ctx context.Context, rec models.DownloadRecord) error {
	rec.RunID = h.runID
	return h.downloads.Create(ctx, &rec)
}

// History groups the repositories backed by one database.
type History struct {
	Runs      *RunRepository
	Downloads *DownloadRepository
}

// NewHistory creates the repositories for db.
func NewHistory(db *sql.DB) *History {
	return &History{Runs: NewRunRepository(db), Downloads: NewDownloadRepository(db)}
}

// Begin creates a run row for mode and target and returns a recorder bound to it.
func (h *History) Begin(ctx context.Context, mode, target string) (*HistoryRecorder, error) {
	run := &models.SyncRun{ID: shared.GenerateID(), Mode: mode, Target: target, StartedAt: time.Now()}
	if err := h.Runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return NewHistoryRecorder(h.Downloads, run.ID), nil
}
