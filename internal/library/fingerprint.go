package library

import (
	"regexp"

	"github.com/desertthunder/spdl/internal/models"
)

var reservedChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Sanitize replaces each reserved filename character (< > : " / \ | ? *) with an underscore.
//
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	return reservedChars.ReplaceAllString(s, "_")
}

// IdentityOf returns the stable identity of track under convention c.
//
// Unknown conventions fall back to [models.DefaultConvention].
func IdentityOf(track models.Track, c models.Convention) string {
	title, artist := Sanitize(track.Title), Sanitize(track.Artist())
	if c == models.ArtistTitle {
		return artist + " - " + title
	}
	return title + " - " + artist
}

// TrackIndex is an insertion-ordered map of identity to [models.Track].
type TrackIndex struct {
	keys    []string
	entries map[string]models.Track
}

// NewTrackIndex returns an empty index.
func NewTrackIndex() *TrackIndex {
	return &TrackIndex{entries: make(map[string]models.Track)}
}

// Put adds track under id unless id is already present. It reports whether the track was added.
func (x *TrackIndex) Put(id string, track models.Track) bool {
	if _, ok := x.entries[id]; ok {
		return false
	}
	x.keys = append(x.keys, id)
	x.entries[id] = track
	return true
}

func (x *TrackIndex) Len() int { return len(x.keys) }

// Keys returns a copy of the identities in insertion order.
func (x *TrackIndex) Keys() []string {
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

func (x *TrackIndex) Get(id string) (models.Track, bool) {
	t, ok := x.entries[id]
	return t, ok
}

func (x *TrackIndex) Has(id string) bool {
	_, ok := x.entries[id]
	return ok
}

// Tracks returns the tracks in insertion order.
func (x *TrackIndex) Tracks() []models.Track {
	out := make([]models.Track, 0, len(x.keys))
	for _, k := range x.keys {
		out = append(out, x.entries[k])
	}
	return out
}

// Each calls fn for every entry in insertion order with a 1-based position. Iteration stops when fn returns false.
func (x *TrackIndex) Each(fn func(i int, id string, track models.Track) bool) {
	for i, k := range x.keys {
		if !fn(i+1, k, x.entries[k]) {
			return
		}
	}
}

// Snapshot converts the index into a [models.Snapshot] carrying the playlist name and owner.
func (x *TrackIndex) Snapshot(name, owner string) *models.Snapshot {
	entries := make(map[string]models.Track, len(x.entries))
	for k, v := range x.entries {
		entries[k] = v
	}
	return &models.Snapshot{Name: name, Owner: owner, Keys: x.Keys(), Entries: entries}
}

// Dedupe keys tracks by identity in the given order.
//
// The first occurrence of an identity wins; every later occurrence is returned in dups, in input order.
// Empty input yields an empty index.
func Dedupe(tracks []models.Track, c models.Convention) (index *TrackIndex, dups []models.Track) {
	index = NewTrackIndex()
	for _, t := range tracks {
		if !index.Put(IdentityOf(t, c), t) {
			dups = append(dups, t)
		}
	}
	return index, dups
}
