package library

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestScanExisting(t *testing.T) {
	t.Run("only audio files count", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "A - Song1.mp3", 10)
		writeFile(t, dir, "B - Song2.MP3", 10)
		writeFile(t, dir, "C - Song3.mp3.part", 10)
		writeFile(t, dir, "notes.txt", 10)
		if err := os.Mkdir(filepath.Join(dir, "D - Folder.mp3"), 0755); err != nil {
			t.Fatal(err)
		}

		set, err := ScanExisting(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set) != 2 {
			t.Errorf("expected 2 identities, got %v", set)
		}
		if !set.Has("A - Song1") || !set.Has("B - Song2") {
			t.Errorf("missing expected identities: %v", set)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		set, err := ScanExisting(filepath.Join(t.TempDir(), "nope"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(set) != 0 {
			t.Errorf("expected empty set, got %v", set)
		}
	})
}

func TestRemoveEmpty(t *testing.T) {
	t.Run("keeps only non-empty audio", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.mp3", 0)
		writeFile(t, dir, "b.mp3", 10)
		writeFile(t, dir, "c.mp3.part", 5)
		writeFile(t, dir, "empty.txt", 0)

		removed, err := RemoveEmpty(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sort.Strings(removed)
		if len(removed) != 2 || removed[0] != "a.mp3" || removed[1] != "c.mp3.part" {
			t.Errorf("unexpected removed list %v", removed)
		}

		set, _ := ScanExisting(dir)
		if len(set) != 1 || !set.Has("b") {
			t.Errorf("expected only b to remain, got %v", set)
		}
		if _, err := os.Stat(filepath.Join(dir, "empty.txt")); err != nil {
			t.Error("non-audio files must be left alone")
		}
	})

	t.Run("missing directory is a no-op", func(t *testing.T) {
		removed, err := RemoveEmpty(filepath.Join(t.TempDir(), "nope"))
		if err != nil || len(removed) != 0 {
			t.Errorf("expected no-op, got %v, %v", removed, err)
		}
	})
}

func TestFileNames(t *testing.T) {
	if AudioFileName("x") != "x.mp3" {
		t.Error("unexpected audio file name")
	}
	if PartFileName("x") != "x.mp3.part" {
		t.Error("unexpected part file name")
	}
}
