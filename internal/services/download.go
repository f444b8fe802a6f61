package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spdl/internal/retry"
	"github.com/desertthunder/spdl/internal/shared"
)

// maxFetchSize bounds in-memory payloads such as cover images.
const maxFetchSize = 16 << 20

// HTTPDownloader implements [Downloader] over plain HTTP GETs.
type HTTPDownloader struct {
	httpClient *http.Client
	policy     retry.Policy
	logger     *log.Logger
}

// NewHTTPDownloader creates a downloader. A nil client uses [http.DefaultClient] and a nil logger uses [log.Default].
func NewHTTPDownloader(client *http.Client, policy retry.Policy, logger *log.Logger) *HTTPDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPDownloader{httpClient: client, policy: policy, logger: logger}
}

// Download streams url into destPath through a ".part" file.
//
// It returns false when destPath already exists. On failure the partial file is removed.
func (d *HTTPDownloader) Download(ctx context.Context, url, destPath string) (bool, error) {
	if _, err := os.Stat(destPath); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check %s: %w", destPath, err)
	}

	partPath := destPath + ".part"
	err := retry.Do(ctx, d.policy, nil, func(ctx context.Context, attempt int) error {
		err := d.downloadOnce(ctx, url, partPath)
		if err != nil {
			d.logger.Warn("download attempt failed", "dest", destPath, "attempt", attempt, "error", err)
		}
		return err
	})
	if err != nil {
		os.Remove(partPath)
		return false, err
	}

	if err := os.Rename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return false, fmt.Errorf("failed to move download into place: %w", err)
	}
	return true, nil
}

func (d *HTTPDownloader) downloadOnce(ctx context.Context, url, partPath string) error {
	resp, err := d.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	f, err := os.Create(partPath)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create %s: %w", partPath, err))
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("%w: download interrupted: %v", shared.ErrRemoteFetch, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return retry.Permanent(fmt.Errorf("failed to sync %s: %w", partPath, err))
	}
	return f.Close()
}

// Fetch returns the body at url, retried per the policy.
func (d *HTTPDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := retry.Do(ctx, d.policy, nil, func(ctx context.Context, attempt int) error {
		resp, err := d.get(ctx, url)
		if err != nil {
			d.logger.Debug("fetch attempt failed", "url", url, "attempt", attempt, "error", err)
			return err
		}
		defer resp.Body.Close()

		data, err = io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
		if err != nil {
			return fmt.Errorf("%w: failed to read body: %v", shared.ErrRemoteFetch, err)
		}
		return nil
	})
	return data, err
}

// get issues a GET and returns the response only for 2xx statuses.
func (d *HTTPDownloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("%w: bad url %q: %v", shared.ErrRemoteFetch, url, err))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteFetch, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	resp.Body.Close()

	err = fmt.Errorf("%w: status %d for %s", shared.ErrRemoteFetch, resp.StatusCode, url)
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
		return nil, retry.Permanent(err)
	}
	return nil, err
}
