// Downloader API client for spotifydown-compatible services
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/retry"
	"github.com/desertthunder/spdl/internal/shared"
	"golang.org/x/time/rate"
)

const defaultAPIBaseURL = "https://api.spotifydown.com"

// APIOpts configures a [DownloaderAPI].
type APIOpts struct {
	BaseURL   string
	Referer   string
	Origin    string
	RateLimit float64 // requests per second, 0 disables limiting
	Client    *http.Client
	Retry     retry.Policy
	Logger    *log.Logger
}

// APIOptsFromConfig builds [APIOpts] from the [api] and [retry] config sections.
func APIOptsFromConfig(cfg *shared.Config, logger *log.Logger) APIOpts {
	return APIOpts{
		BaseURL:   cfg.API.BaseURL,
		Referer:   cfg.API.Referer,
		Origin:    cfg.API.Origin,
		RateLimit: cfg.API.RateLimit,
		Client:    &http.Client{Timeout: cfg.API.Timeout()},
		Retry:     retry.FromConfig(cfg.Retry),
		Logger:    logger,
	}
}

// DownloaderAPI is a client for a spotifydown-compatible downloader API.
type DownloaderAPI struct {
	baseURL    string
	referer    string
	origin     string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     retry.Policy
	logger     *log.Logger
}

// NewDownloaderAPI creates a client. An empty BaseURL uses the public endpoint and a nil Client uses
// [http.DefaultClient].
func NewDownloaderAPI(opts APIOpts) *DownloaderAPI {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultAPIBaseURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = retry.DefaultPolicy()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &DownloaderAPI{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		referer:    opts.Referer,
		origin:     opts.Origin,
		httpClient: opts.Client,
		limiter:    limiter,
		policy:     opts.Retry,
		logger:     opts.Logger,
	}
}

func (a *DownloaderAPI) Name() string { return "spotifydown" }

type playlistMetadata struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Title   string `json:"title"`
	Artists string `json:"artists"`
}

type apiTrack struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artists string `json:"artists"`
	Album   string `json:"album"`
	Cover   string `json:"cover"`
}

func (t apiTrack) model() models.Track {
	return models.Track{
		SourceID: t.ID,
		Title:    t.Title,
		Artists:  []string{t.Artists},
		Album:    t.Album,
		CoverURL: t.Cover,
	}
}

// offset is a number in practice; strings and null are tolerated.
type offset struct {
	value int
	set   bool
}

func (o *offset) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" || s == "false" {
		*o = offset{}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid nextOffset %s", b)
	}
	*o = offset{value: n, set: n > 0}
	return nil
}

type trackListPage struct {
	Success    *bool      `json:"success"`
	Message    string     `json:"message"`
	TrackList  []apiTrack `json:"trackList"`
	NextOffset offset     `json:"nextOffset"`
}

type downloadResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Metadata apiTrack `json:"metadata"`
	Link     string   `json:"link"`
}

// FetchPlaylist returns the playlist's metadata and every page of its track list.
func (a *DownloaderAPI) FetchPlaylist(ctx context.Context, link string) (*models.RemotePlaylist, error) {
	id, err := ExtractID(link)
	if err != nil {
		return nil, err
	}

	var meta playlistMetadata
	if err := a.getJSON(ctx, "/metadata/playlist/"+url.PathEscape(id), shared.ErrPlaylistNotFound, &meta); err != nil {
		return nil, err
	}
	if !meta.Success {
		return nil, fmt.Errorf("%w: %s", shared.ErrRemoteFetch, apiMessage(meta.Message, "playlist metadata unavailable"))
	}

	playlist := &models.RemotePlaylist{ID: id, Name: meta.Title, Owner: meta.Artists}

	path := "/tracklist/playlist/" + url.PathEscape(id)
	last := 0
	for page := 1; ; page++ {
		var body trackListPage
		if err := a.getJSON(ctx, path, shared.ErrPlaylistNotFound, &body); err != nil {
			return nil, err
		}
		if body.Success != nil && !*body.Success {
			return nil, fmt.Errorf("%w: %s", shared.ErrRemoteFetch, apiMessage(body.Message, "track list unavailable"))
		}
		for _, t := range body.TrackList {
			playlist.Tracks = append(playlist.Tracks, t.model())
		}

		a.logger.Debug("fetched track list page", "playlist", id, "page", page, "tracks", len(body.TrackList))
		if !body.NextOffset.set {
			break
		}
		if body.NextOffset.value <= last {
			a.logger.Warn("track list offset did not advance, stopping", "playlist", id, "offset", body.NextOffset.value)
			break
		}
		last = body.NextOffset.value
		path = fmt.Sprintf("/tracklist/playlist/%s?offset=%d", url.PathEscape(id), body.NextOffset.value)
	}

	return playlist, nil
}

// ResolveTrack returns the track's metadata and audio link.
func (a *DownloaderAPI) ResolveTrack(ctx context.Context, link string) (*models.ResolvedTrack, error) {
	id, err := ExtractID(link)
	if err != nil {
		return nil, err
	}

	var body downloadResponse
	if err := a.getJSON(ctx, "/download/"+url.PathEscape(id), shared.ErrTrackNotFound, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, fmt.Errorf("%w: %s", shared.ErrRemoteFetch, apiMessage(body.Message, "track unavailable"))
	}
	if body.Link == "" {
		return nil, fmt.Errorf("%w: no audio link for track %s", shared.ErrRemoteFetch, id)
	}

	track := body.Metadata.model()
	if track.SourceID == "" {
		track.SourceID = id
	}
	return &models.ResolvedTrack{Track: track, AudioURL: body.Link}, nil
}

// getJSON performs a rate limited GET with retries and decodes the JSON body into out.
//
// A 404 response maps to notFound and is not retried.
func (a *DownloaderAPI) getJSON(ctx context.Context, path string, notFound error, out any) error {
	fullURL := a.baseURL + path

	return retry.Do(ctx, a.policy, nil, func(ctx context.Context, attempt int) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if a.referer != "" {
			req.Header.Set("Referer", a.referer)
		}
		if a.origin != "" {
			req.Header.Set("Origin", a.origin)
		}

		err = a.do(req, notFound, out)
		if err != nil {
			a.logger.Warn("api request failed", "path", path, "attempt", attempt, "error", err)
		}
		return err
	})
}

func (a *DownloaderAPI) do(req *http.Request, notFound error, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrRemoteFetch, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return retry.Permanent(fmt.Errorf("%w: %s", notFound, req.URL.Path))
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return retry.Permanent(fmt.Errorf("%w: status %d from %s", shared.ErrRemoteFetch, resp.StatusCode, req.URL.Path))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d from %s", shared.ErrRemoteFetch, resp.StatusCode, req.URL.Path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("%w: response is not JSON: %v", shared.ErrRemoteFetch, err)
		}
		return retry.Permanent(fmt.Errorf("%w: unexpected response shape: %v", shared.ErrRemoteFetch, err))
	}
	return nil
}

func apiMessage(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
