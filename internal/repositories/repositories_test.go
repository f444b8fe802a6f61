package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func record(identity string, at time.Time) *models.DownloadRecord {
	return &models.DownloadRecord{
		Identity:     identity,
		SourceID:     "id-" + identity,
		Title:        identity,
		Artist:       "Artist",
		Path:         "/music/" + identity + ".mp3",
		DownloadedAt: at,
	}
}

func TestRunRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create generates ID", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := &models.SyncRun{Mode: "download", Target: "https://open.spotify.com/playlist/p1"}

		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID == "" {
			t.Error("run ID should be set after creation")
		}
		if run.StartedAt.IsZero() {
			t.Error("run start time should be set after creation")
		}
	})

	t.Run("Create requires mode", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if err := repo.Create(ctx, &models.SyncRun{Target: "x"}); err == nil {
			t.Error("expected validation error for empty mode")
		}
	})

	t.Run("Get unfinished", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := &models.SyncRun{Mode: "sync", Target: "sync.json"}
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(ctx, run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Mode != "sync" || got.Target != "sync.json" {
			t.Errorf("unexpected run: %+v", got)
		}
		if got.FinishedAt != nil {
			t.Errorf("expected nil finish time, got %v", got.FinishedAt)
		}
	})

	t.Run("Finish", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := &models.SyncRun{Mode: "download", Target: "link"}
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Finish(ctx, run.ID, 5, 3, 2); err != nil {
			t.Fatalf("failed to finish run: %v", err)
		}

		got, err := repo.Get(ctx, run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.FinishedAt == nil {
			t.Fatal("expected finish time to be set")
		}
		if got.Planned != 5 || got.Downloaded != 3 || got.Failed != 2 {
			t.Errorf("unexpected counters: planned=%d downloaded=%d failed=%d", got.Planned, got.Downloaded, got.Failed)
		}
	})

	t.Run("Finish unknown run", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		err := repo.Finish(ctx, "missing", 0, 0, 0)
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Get unknown run", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		_, err := repo.Get(ctx, "missing")
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Recent newest first", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		for i, target := range []string{"a", "b", "c"} {
			run := &models.SyncRun{Mode: "download", Target: target, StartedAt: base.Add(time.Duration(i) * time.Minute)}
			if err := repo.Create(ctx, run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.Recent(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].Target != "c" || runs[1].Target != "b" {
			t.Errorf("unexpected order: %s, %s", runs[0].Target, runs[1].Target)
		}
	})
}

func TestDownloadRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Create without run", func(t *testing.T) {
		repo := NewDownloadRepository(setupTestDB(t))
		rec := record("Song - Artist", base)

		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}
		if rec.ID == "" {
			t.Error("record ID should be set after creation")
		}

		got, err := repo.ByIdentity(ctx, "Song - Artist")
		if err != nil {
			t.Fatalf("failed to query download: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
		if got[0].RunID != "" {
			t.Errorf("expected empty run id, got %q", got[0].RunID)
		}
		if !got[0].DownloadedAt.Equal(base) {
			t.Errorf("expected time %v, got %v", base, got[0].DownloadedAt)
		}
	})

	t.Run("Create rejects invalid record", func(t *testing.T) {
		repo := NewDownloadRepository(setupTestDB(t))
		if err := repo.Create(ctx, &models.DownloadRecord{Path: "/x.mp3"}); err == nil {
			t.Error("expected validation error for empty identity")
		}
	})

	t.Run("Create with unknown run violates foreign key", func(t *testing.T) {
		repo := NewDownloadRepository(setupTestDB(t))
		rec := record("Song", base)
		rec.RunID = "missing"
		if err := repo.Create(ctx, rec); err == nil {
			t.Error("expected foreign key error")
		}
	})

	t.Run("Recent and Count", func(t *testing.T) {
		repo := NewDownloadRepository(setupTestDB(t))
		for i, id := range []string{"one", "two", "three"} {
			if err := repo.Create(ctx, record(id, base.Add(time.Duration(i)*time.Second))); err != nil {
				t.Fatalf("failed to create download: %v", err)
			}
		}

		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3 downloads, got %d", n)
		}

		recent, err := repo.Recent(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list downloads: %v", err)
		}
		if len(recent) != 3 {
			t.Fatalf("expected 3 downloads, got %d", len(recent))
		}
		if recent[0].Identity != "three" || recent[2].Identity != "one" {
			t.Errorf("unexpected order: %s ... %s", recent[0].Identity, recent[2].Identity)
		}
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Begin binds recorder to run", func(t *testing.T) {
		history := NewHistory(setupTestDB(t))

		recorder, err := history.Begin(ctx, "download", "link")
		if err != nil {
			t.Fatalf("failed to begin run: %v", err)
		}
		if recorder.RunID() == "" {
			t.Fatal("expected run id")
		}

		rec := *record("Song - Artist", time.Now())
		rec.RunID = "ignored"
		if err := recorder.RecordDownload(ctx, rec); err != nil {
			t.Fatalf("failed to record download: %v", err)
		}

		got, err := history.Downloads.ByRun(ctx, recorder.RunID())
		if err != nil {
			t.Fatalf("failed to list run downloads: %v", err)
		}
		if len(got) != 1 || got[0].Identity != "Song - Artist" {
			t.Errorf("unexpected run downloads: %+v", got)
		}
	})

	t.Run("Begin then Finish", func(t *testing.T) {
		history := NewHistory(setupTestDB(t))
		recorder, err := history.Begin(ctx, "sync", "sync.json")
		if err != nil {
			t.Fatalf("failed to begin run: %v", err)
		}
		if err := history.Runs.Finish(ctx, recorder.RunID(), 1, 1, 0); err != nil {
			t.Fatalf("failed to finish run: %v", err)
		}

		runs, err := history.Runs.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 || runs[0].Downloaded != 1 {
			t.Errorf("unexpected runs: %+v", runs)
		}
	})
}
