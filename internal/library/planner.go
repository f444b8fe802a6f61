package library

import (
	"fmt"

	"github.com/desertthunder/spdl/internal/models"
)

// Outcome tells the caller whether a playlist needs any work.
type Outcome int

const (
	UpToDate Outcome = iota
	Download
)

func (o Outcome) String() string {
	switch o {
	case UpToDate:
		return "up_to_date"
	case Download:
		return "download"
	default:
		return ""
	}
}

// DownloadPlan holds the tracks missing from the destination, in remote order.
type DownloadPlan struct {
	Outcome Outcome
	Missing *TrackIndex
	Present int // remote tracks already on disk
}

// Plan returns the tracks of remote whose identity is not in existing.
func Plan(remote *TrackIndex, existing IdentitySet) DownloadPlan {
	missing := NewTrackIndex()
	present := 0
	if remote != nil {
		remote.Each(func(_ int, id string, track models.Track) bool {
			if existing.Has(id) {
				present++
			} else {
				missing.Put(id, track)
			}
			return true
		})
	}

	p := DownloadPlan{Outcome: UpToDate, Missing: missing, Present: present}
	if missing.Len() > 0 {
		p.Outcome = Download
	}
	return p
}

// Len returns the number of tracks to download.
func (p DownloadPlan) Len() int {
	if p.Missing == nil {
		return 0
	}
	return p.Missing.Len()
}

// Summary returns the one-line report printed before a playlist is processed.
func (p DownloadPlan) Summary(name, dir string) string {
	if p.Outcome == UpToDate {
		return fmt.Sprintf("All tracks from %s already exist in the directory (%s).", name, dir)
	}
	return fmt.Sprintf("Downloading %d new track(s) from %s to (%s)", p.Len(), name, dir)
}
