package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/spdl/internal/shared"
	tu "github.com/desertthunder/spdl/internal/testing"
)

func TestHTTPDownloader(t *testing.T) {
	t.Run("Download", func(t *testing.T) {
		t.Run("Writes file through part file", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ID3audio"))
			}))
			defer server.Close()

			dir := t.TempDir()
			dest := filepath.Join(dir, "Song - Artist.mp3")
			d := NewHTTPDownloader(nil, fastRetry(), nil)

			ok, err := d.Download(context.Background(), server.URL, dest)
			if err != nil || !ok {
				t.Fatalf("expected download, got ok=%v err=%v", ok, err)
			}
			if got := tu.MustReadFile(t, dest); got != "ID3audio" {
				t.Errorf("unexpected content %q", got)
			}
			if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
				t.Error("part file should be gone")
			}
		})

		t.Run("Skips existing file", func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "x.mp3")
			if err := os.WriteFile(dest, []byte("old"), 0644); err != nil {
				t.Fatal(err)
			}

			ok, err := NewHTTPDownloader(nil, fastRetry(), nil).Download(context.Background(), server.URL, dest)
			if err != nil || ok {
				t.Errorf("expected skip, got ok=%v err=%v", ok, err)
			}
			if calls.Load() != 0 {
				t.Error("server should not be contacted")
			}
			if tu.MustReadFile(t, dest) != "old" {
				t.Error("existing file was modified")
			}
		})

		t.Run("Retries then fails cleanly", func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			dir := t.TempDir()
			dest := filepath.Join(dir, "x.mp3")
			ok, err := NewHTTPDownloader(nil, fastRetry(), nil).Download(context.Background(), server.URL, dest)
			if ok || !errors.Is(err, shared.ErrRemoteFetch) {
				t.Errorf("expected ErrRemoteFetch, got ok=%v err=%v", ok, err)
			}
			if calls.Load() != 3 {
				t.Errorf("expected 3 attempts, got %d", calls.Load())
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("expected empty directory, found %d entries", len(entries))
			}
		})

		t.Run("Not found is permanent", func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				http.NotFound(w, r)
			}))
			defer server.Close()

			_, err := NewHTTPDownloader(nil, fastRetry(), nil).Download(context.Background(), server.URL, filepath.Join(t.TempDir(), "x.mp3"))
			if err == nil {
				t.Fatal("expected error")
			}
			if calls.Load() != 1 {
				t.Errorf("expected 1 attempt, got %d", calls.Load())
			}
		})
	})

	t.Run("Fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("cover"))
		}))
		defer server.Close()

		data, err := NewHTTPDownloader(server.Client(), fastRetry(), nil).Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(data) != "cover" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("Transport error", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		_, err := NewHTTPDownloader(client, fastRetry(), nil).Fetch(context.Background(), "http://example.invalid/cover.jpg")
		if !errors.Is(err, shared.ErrRemoteFetch) {
			t.Errorf("expected ErrRemoteFetch, got %v", err)
		}
	})
}
