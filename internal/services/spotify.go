// Spotify Web API implementation of [SnapshotSource]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/retry"
	"github.com/desertthunder/spdl/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyPageSize = 100
)

// SpotifyService fetches playlists from the Spotify Web API with the client credentials flow.
//
// Only public playlists are reachable; no user authorization is involved.
type SpotifyService struct {
	config     *clientcredentials.Config
	baseURL    string
	httpClient *http.Client // transport used for both token and API requests
	client     *spotify.Client
	policy     retry.Policy
	logger     *log.Logger
}

// NewSpotifyService creates a service from "client_id" and "client_secret" credentials.
//
// "token_url" and "base_url" override the Spotify endpoints.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	tokenURL := credentials["token_url"]
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	return &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		baseURL:    credentials["base_url"],
		httpClient: http.DefaultClient,
		policy:     retry.DefaultPolicy(),
		logger:     log.Default(),
	}, nil
}

// WithHTTPClient sets the client used for token and API requests.
func (s *SpotifyService) WithHTTPClient(c *http.Client) *SpotifyService {
	s.httpClient = c
	s.client = nil
	return s
}

// WithRetry sets the policy applied to every Web API request and the logger that reports failed attempts.
func (s *SpotifyService) WithRetry(p retry.Policy, logger *log.Logger) *SpotifyService {
	s.policy = p
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate builds the token-refreshing API client. It is called lazily by [SpotifyService.FetchPlaylist].
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	if _, err := s.config.Token(ctx); err != nil {
		return fmt.Errorf("%w: spotify token request failed: %v", shared.ErrMissingCredentials, err)
	}

	var opts []spotify.ClientOption
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.baseURL))
	}
	// The token source outlives ctx, so it is bound to a background context carrying the same transport.
	bg := context.WithValue(context.Background(), oauth2.HTTPClient, s.httpClient)
	s.client = spotify.New(s.config.Client(bg), opts...)
	return nil
}

// FetchPlaylist returns the playlist name, owner and every track. Episodes and unavailable items are skipped.
func (s *SpotifyService) FetchPlaylist(ctx context.Context, link string) (*models.RemotePlaylist, error) {
	id, err := ExtractID(link)
	if err != nil {
		return nil, err
	}
	if s.client == nil {
		if err := s.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	var pl *spotify.FullPlaylist
	err = s.do(ctx, "playlist", id, func(ctx context.Context) (err error) {
		pl, err = s.client.GetPlaylist(ctx, spotify.ID(id))
		return err
	})
	if err != nil {
		return nil, err
	}

	playlist := &models.RemotePlaylist{ID: id, Name: pl.Name, Owner: pl.Owner.DisplayName}

	offset := 0
	for {
		var page *spotify.PlaylistItemPage
		err := s.do(ctx, "playlist items", id, func(ctx context.Context) (err error) {
			page, err = s.client.GetPlaylistItems(ctx, spotify.ID(id), spotify.Limit(spotifyPageSize), spotify.Offset(offset))
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			playlist.Tracks = append(playlist.Tracks, fullTrackModel(item.Track.Track))
		}

		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= int(page.Total) {
			break
		}
	}

	return playlist, nil
}

func fullTrackModel(t *spotify.FullTrack) models.Track {
	track := models.Track{
		SourceID: string(t.ID),
		Title:    t.Name,
		Album:    t.Album.Name,
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	if len(t.Album.Images) > 0 {
		track.CoverURL = t.Album.Images[0].URL
	}
	return track
}

// do runs one Web API call under the retry policy.
func (s *SpotifyService) do(ctx context.Context, what, id string, call func(ctx context.Context) error) error {
	return retry.Do(ctx, s.policy, nil, func(ctx context.Context, attempt int) error {
		err := call(ctx)
		if err != nil {
			err = wrapSpotifyError(err, shared.ErrPlaylistNotFound, id)
			s.logger.Warn("spotify request failed", "request", what, "playlist", id, "attempt", attempt, "error", err)
		}
		return err
	})
}

// wrapSpotifyError maps 404 to notFound. Client errors other than 429 are not retried.
func wrapSpotifyError(err, notFound error, id string) error {
	var apiErr spotify.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: spotify: %v", shared.ErrRemoteFetch, err)
	}
	switch {
	case apiErr.Status == http.StatusNotFound:
		return retry.Permanent(fmt.Errorf("%w: %s", notFound, id))
	case apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests:
		return retry.Permanent(fmt.Errorf("%w: spotify: %v", shared.ErrRemoteFetch, err))
	}
	return fmt.Errorf("%w: spotify: %v", shared.ErrRemoteFetch, err)
}
