package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/spdl/internal/shared"
)

// LinkKind classifies a Spotify link.
type LinkKind int

const (
	InvalidLink LinkKind = iota
	TrackLink
	PlaylistLink
)

func (k LinkKind) String() string {
	switch k {
	case TrackLink:
		return "track"
	case PlaylistLink:
		return "playlist"
	default:
		return "invalid"
	}
}

var (
	trackLinkPattern    = regexp.MustCompile(`spotify\.com/(?:intl-[a-zA-Z]{2}/)?track/`)
	playlistLinkPattern = regexp.MustCompile(`spotify\.com/(?:intl-[a-zA-Z]{2}/)?playlist/`)
)

// ClassifyLink reports whether link points at a track or a playlist. spotify:track: and spotify:playlist: URIs are
// accepted too.
func ClassifyLink(link string) LinkKind {
	link = strings.TrimSpace(link)
	switch {
	case strings.HasPrefix(link, "spotify:track:"), trackLinkPattern.MatchString(link):
		return TrackLink
	case strings.HasPrefix(link, "spotify:playlist:"), playlistLinkPattern.MatchString(link):
		return PlaylistLink
	default:
		return InvalidLink
	}
}

// ExtractID returns the id at the end of a Spotify link, without query string or fragment.
func ExtractID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if i := strings.LastIndex(link, ":"); strings.HasPrefix(link, "spotify:") && i >= 0 {
		return nonEmptyID(link, link[i+1:])
	}

	link, _, _ = strings.Cut(link, "?")
	link, _, _ = strings.Cut(link, "#")
	link = strings.TrimRight(link, "/")
	return nonEmptyID(link, link[strings.LastIndex(link, "/")+1:])
}

func nonEmptyID(link, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrInvalidLink, link)
	}
	return id, nil
}
