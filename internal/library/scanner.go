package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	AudioExt = ".mp3"
	PartExt  = ".part"
)

// IdentitySet is the set of identities present in a directory.
type IdentitySet map[string]struct{}

func (s IdentitySet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IdentitySet) Add(id string) { s[id] = struct{}{} }

// AudioFileName returns the file name an identity is stored under.
func AudioFileName(identity string) string { return identity + AudioExt }

// PartFileName returns the in-progress file name for an identity.
func PartFileName(identity string) string { return identity + AudioExt + PartExt }

// ScanExisting lists the identities of audio files directly inside dir.
//
// Only regular files ending in [AudioExt] (any case) count; directories, partial files and other extensions are
// skipped. A missing directory yields an empty set.
func ScanExisting(dir string) (IdentitySet, error) {
	set := IdentitySet{}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if stem, ok := audioStem(entry.Name()); ok {
			set.Add(stem)
		}
	}
	return set, nil
}

// RemoveEmpty deletes zero-byte audio files and leftover partial files directly inside dir and returns their names.
//
// A missing directory is a no-op.
func RemoveEmpty(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var removed []string
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()

		drop := strings.HasSuffix(name, PartExt)
		if !drop {
			if _, ok := audioStem(name); ok {
				info, err := entry.Info()
				if err != nil {
					errs = append(errs, err)
					continue
				}
				drop = info.Size() == 0
			}
		}
		if !drop {
			continue
		}

		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, name)
	}
	return removed, errors.Join(errs...)
}

func audioStem(name string) (string, bool) {
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, AudioExt) {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}
