// package models defines the data model for the spdl downloader
package models

import (
	"fmt"
	"strings"
	"time"
)

// Convention selects the order of title and artist in a track identity.
//
// The numeric values are the codes persisted in the sync manifest.
type Convention int

const (
	TitleArtist Convention = 1 // "Title - Artist", the default
	ArtistTitle Convention = 2 // "Artist - Title"
)

// DefaultConvention is used when neither the manifest nor the config names one.
const DefaultConvention = TitleArtist

// ParseConvention converts a persisted code into a [Convention].
func ParseConvention(code int) (Convention, error) {
	switch c := Convention(code); c {
	case TitleArtist, ArtistTitle:
		return c, nil
	default:
		return 0, fmt.Errorf("unknown naming convention %d", code)
	}
}

// Code returns the persisted numeric code.
func (c Convention) Code() int { return int(c) }

// Valid reports whether c is a known convention.
func (c Convention) Valid() bool { return c == TitleArtist || c == ArtistTitle }

// Label returns the human-readable template written next to the code in the manifest.
func (c Convention) Label() string {
	switch c {
	case TitleArtist:
		return "Title - Artist"
	case ArtistTitle:
		return "Artist - Title"
	default:
		return ""
	}
}

func (c Convention) String() string {
	switch c {
	case TitleArtist:
		return "title_artist"
	case ArtistTitle:
		return "artist_title"
	default:
		return fmt.Sprintf("convention(%d)", int(c))
	}
}

// Track represents a music track as reported by a collaborator.
type Track struct {
	SourceID string   // Opaque external id (Spotify track id)
	Title    string
	Artists  []string // Credited artists in order
	Album    string
	CoverURL string
}

// Artist joins the credited artists the way they appear in file names.
func (t Track) Artist() string {
	return strings.Join(t.Artists, ", ")
}

// Link returns the canonical open.spotify.com URL for the track, or an empty string without a SourceID.
func (t Track) Link() string {
	if t.SourceID == "" {
		return ""
	}
	return "https://open.spotify.com/track/" + t.SourceID
}

// RemotePlaylist is a playlist as returned by a snapshot source, before deduplication.
type RemotePlaylist struct {
	ID     string
	Name   string
	Owner  string
	Tracks []Track
}

// Snapshot is a deduplicated view of a playlist.
//
// Keys holds identities in first-seen order and Entries maps each identity to its track.
type Snapshot struct {
	Name    string
	Owner   string
	Keys    []string
	Entries map[string]Track
}

// Len returns the number of unique tracks.
func (s *Snapshot) Len() int { return len(s.Keys) }

// ResolvedTrack is a track together with the audio file it can be downloaded from.
type ResolvedTrack struct {
	Track
	AudioURL string
}

// SyncRun is one download or sync invocation recorded in the history database.
type SyncRun struct {
	ID         string
	Mode       string // "download" or "sync"
	Target     string // link or manifest path
	StartedAt  time.Time
	FinishedAt *time.Time
	Planned    int
	Downloaded int
	Failed     int
}

// DownloadRecord is one audio file written to disk.
type DownloadRecord struct {
	ID           string
	RunID        string
	Identity     string
	SourceID     string
	Title        string
	Artist       string
	Album        string
	Playlist     string
	Path         string
	DownloadedAt time.Time
}

// Validate checks that the record can be persisted.
func (r *DownloadRecord) Validate() error {
	if r.Identity == "" {
		return fmt.Errorf("download record identity is required")
	}
	if r.Path == "" {
		return fmt.Errorf("download record path is required")
	}
	return nil
}
