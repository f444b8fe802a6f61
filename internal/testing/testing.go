// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spdl/internal/models"
)

// FakeSource is a test double for services.SnapshotSource keyed by link.
type FakeSource struct {
	Playlists map[string]*models.RemotePlaylist
	Errors    map[string]error

	mu    sync.Mutex
	Calls []string
}

func (f *FakeSource) FetchPlaylist(ctx context.Context, link string) (*models.RemotePlaylist, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, link)
	f.mu.Unlock()

	if err, ok := f.Errors[link]; ok {
		return nil, err
	}
	pl, ok := f.Playlists[link]
	if !ok {
		return nil, fmt.Errorf("no playlist for %s", link)
	}
	return pl, nil
}

func (f *FakeSource) Name() string { return "fake" }

// FakeResolver is a test double for services.TrackResolver.
//
// Tracks without an entry resolve to an audio URL of "audio://<link>".
type FakeResolver struct {
	Tracks map[string]*models.ResolvedTrack
	Errors map[string]error
}

func (f *FakeResolver) ResolveTrack(ctx context.Context, link string) (*models.ResolvedTrack, error) {
	if err, ok := f.Errors[link]; ok {
		return nil, err
	}
	if tr, ok := f.Tracks[link]; ok {
		return tr, nil
	}
	return &models.ResolvedTrack{Track: models.Track{Title: link}, AudioURL: "audio://" + link}, nil
}

// FakeDownloader is a test double for services.Downloader that writes Content to the destination.
//
// It is safe for concurrent use.
type FakeDownloader struct {
	Content  []byte
	Cover    []byte
	Errors   map[string]error // keyed by url
	Empty    map[string]bool  // urls that produce zero-byte files
	mu       sync.Mutex
	Written  []string
	Fetched  []string
	inFlight int
	MaxSeen  int
}

func (f *FakeDownloader) Download(ctx context.Context, url, destPath string) (bool, error) {
	f.mu.Lock()
	f.inFlight++
	f.MaxSeen = max(f.MaxSeen, f.inFlight)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if err, ok := f.Errors[url]; ok {
		return false, err
	}
	if _, err := os.Stat(destPath); err == nil {
		return false, nil
	}

	content := f.Content
	if content == nil {
		content = []byte("audio")
	}
	if f.Empty[url] {
		content = nil
	}
	if err := os.WriteFile(destPath, content, 0644); err != nil {
		return false, err
	}

	f.mu.Lock()
	f.Written = append(f.Written, destPath)
	f.mu.Unlock()
	return true, nil
}

func (f *FakeDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.Fetched = append(f.Fetched, url)
	f.mu.Unlock()
	if err, ok := f.Errors[url]; ok {
		return nil, err
	}
	return f.Cover, nil
}

// WrittenCount returns how many files were written.
func (f *FakeDownloader) WrittenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Written)
}

// FakeTagger records cover embedding calls.
type FakeTagger struct {
	Err   error
	mu    sync.Mutex
	Paths []string
}

func (f *FakeTagger) EmbedCover(path string, image []byte, track models.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths = append(f.Paths, path)
	return f.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
