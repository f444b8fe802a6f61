// package services defines the collaborators the download engine talks to over HTTP
//
// spotifydown-style downloader API, Spotify Web API, plain file downloads
package services

import (
	"context"

	"github.com/desertthunder/spdl/internal/models"
)

// SnapshotSource fetches a playlist with every page of its track list flattened.
type SnapshotSource interface {
	// FetchPlaylist returns the playlist behind link. Tracks may contain duplicates.
	FetchPlaylist(ctx context.Context, link string) (*models.RemotePlaylist, error)

	// Name returns the name of the source (e.g., "spotifydown", "Spotify")
	Name() string
}

// TrackResolver turns a track link into metadata plus a downloadable audio URL.
type TrackResolver interface {
	ResolveTrack(ctx context.Context, link string) (*models.ResolvedTrack, error)
}

// Downloader writes remote files to disk and fetches small payloads into memory.
type Downloader interface {
	// Download saves url to destPath. It returns false without error when destPath already exists.
	Download(ctx context.Context, url, destPath string) (bool, error)

	// Fetch returns the body at url.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
