package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spdl/internal/manifest"
	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
)

const playlistLink = "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M"

func press(t *testing.T, w *Wizard, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		w.Update(msg)
	}
}

func TestWizard(t *testing.T) {
	ctx := context.Background()

	t.Run("declining the create question", func(t *testing.T) {
		w := NewWizard(ctx, WizardOpts{Reason: "Sync file does not exist."})
		if w.Step() != ConfirmStep {
			t.Fatalf("expected ConfirmStep, got %d", w.Step())
		}
		if !strings.Contains(w.View(), "Sync file does not exist.") {
			t.Errorf("view should show the reason:\n%s", w.View())
		}

		press(t, w, "n")

		if !w.Done() {
			t.Fatal("wizard should be done")
		}
		if _, err := w.Result(); !errors.Is(err, shared.ErrUserDeclined) {
			t.Errorf("expected ErrUserDeclined, got %v", err)
		}
	})

	t.Run("enter defaults to no", func(t *testing.T) {
		w := NewWizard(ctx, WizardOpts{})
		press(t, w, "enter")
		if _, err := w.Result(); !errors.Is(err, shared.ErrUserDeclined) {
			t.Errorf("expected ErrUserDeclined, got %v", err)
		}
	})

	t.Run("empty manifest", func(t *testing.T) {
		w := NewWizard(ctx, WizardOpts{})
		press(t, w, "y", "2", "enter")

		m, err := w.Result()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.DefaultConvention != models.ArtistTitle {
			t.Errorf("expected ArtistTitle, got %v", m.DefaultConvention)
		}
		if m.Len() != 0 {
			t.Errorf("expected no entries, got %d", m.Len())
		}
	})

	t.Run("convention from list selection", func(t *testing.T) {
		w := NewWizard(ctx, WizardOpts{})
		press(t, w, "y", "enter")
		if w.Step() != LinkStep {
			t.Fatalf("expected LinkStep, got %d", w.Step())
		}
		press(t, w, "enter")

		m, err := w.Result()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.DefaultConvention != models.TitleArtist {
			t.Errorf("expected TitleArtist, got %v", m.DefaultConvention)
		}
	})

	t.Run("entries with defaults", func(t *testing.T) {
		w := NewWizard(ctx, WizardOpts{DefaultLocation: "/music"})
		press(t, w, "y", "1")
		press(t, w, playlistLink, "enter")
		if w.Step() != FolderStep {
			t.Fatalf("expected FolderStep, got %d", w.Step())
		}
		press(t, w, "y")
		if w.Step() != LocationStep {
			t.Fatalf("expected LocationStep, got %d", w.Step())
		}
		press(t, w, "enter")

		press(t, w, "spotify:playlist:abc", "enter", "enter", "/data/mix", "enter")
		press(t, w, "enter")

		m, err := w.Result()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []manifest.Entry{
			{Link: playlistLink, DownloadLocation: "/music", CreateFolder: true, Convention: models.TitleArtist},
			{Link: "spotify:playlist:abc", DownloadLocation: "/data/mix", CreateFolder: false, Convention: models.TitleArtist},
		}
		if len(m.Entries) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(m.Entries))
		}
		for i := range want {
			if m.Entries[i] != want[i] {
				t.Errorf("entry %d: expected %+v, got %+v", i, want[i], m.Entries[i])
			}
		}
	})

	t.Run("rejects track links", func(t *testing.T) {
		w := NewWizard(ctx, WizardOpts{})
		press(t, w, "y", "1", "https://open.spotify.com/track/xyz", "enter")

		if w.Step() != LinkStep {
			t.Fatalf("expected to stay on LinkStep, got %d", w.Step())
		}
		if !strings.Contains(w.View(), "is not a Spotify playlist link") {
			t.Errorf("view should explain the rejection:\n%s", w.View())
		}
	})

	t.Run("name lookup", func(t *testing.T) {
		var looked string
		lookup := func(_ context.Context, link string) (string, error) {
			looked = link
			return "Daily Mix", nil
		}
		w := NewWizard(ctx, WizardOpts{Lookup: lookup})
		press(t, w, "y", "1", playlistLink, "enter", "n")

		_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if w.Step() != ResolvingStep {
			t.Fatalf("expected ResolvingStep, got %d", w.Step())
		}
		if cmd == nil {
			t.Fatal("expected a lookup command")
		}

		w.Update(cmd())
		if looked != playlistLink {
			t.Errorf("lookup called with %q", looked)
		}
		if w.Step() != LinkStep {
			t.Fatalf("expected LinkStep after lookup, got %d", w.Step())
		}

		press(t, w, "enter")
		m, err := w.Result()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Entries[0].Name != "Daily Mix" {
			t.Errorf("expected name Daily Mix, got %q", m.Entries[0].Name)
		}
	})

	t.Run("failed name lookup keeps the entry", func(t *testing.T) {
		lookup := func(context.Context, string) (string, error) { return "", shared.ErrRemoteFetch }
		w := NewWizard(ctx, WizardOpts{Lookup: lookup})
		press(t, w, "y", "1", playlistLink, "enter", "n")

		_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		w.Update(cmd())
		press(t, w, "enter")

		m, err := w.Result()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Len() != 1 || m.Entries[0].Name != "" {
			t.Errorf("unexpected entries: %+v", m.Entries)
		}
	})

	t.Run("appending to an existing manifest", func(t *testing.T) {
		existing := manifest.New(models.ArtistTitle)
		existing.Add(manifest.Entry{Link: "https://open.spotify.com/playlist/old", DownloadLocation: "."})

		w := NewWizard(ctx, WizardOpts{Existing: existing})
		if w.Step() != LinkStep {
			t.Fatalf("expected LinkStep, got %d", w.Step())
		}
		press(t, w, playlistLink, "enter", "n", "enter", "enter")

		m, err := w.Result()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Len() != 2 {
			t.Fatalf("expected 2 entries, got %d", m.Len())
		}
		if m.Entries[1].Convention != models.ArtistTitle {
			t.Errorf("appended entry should use the manifest default, got %v", m.Entries[1].Convention)
		}
	})

	t.Run("escape aborts", func(t *testing.T) {
		w := NewWizard(ctx, WizardOpts{})
		press(t, w, "y", "1", playlistLink, "esc")

		if !w.Done() {
			t.Fatal("wizard should be done")
		}
		if _, err := w.Result(); !errors.Is(err, shared.ErrUserDeclined) {
			t.Errorf("expected ErrUserDeclined, got %v", err)
		}
	})
}
