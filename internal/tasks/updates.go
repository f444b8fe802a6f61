package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/spdl/internal/library"
	"github.com/desertthunder/spdl/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
	Warning bool   // Message reports a problem the run recovered from
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	Dedupe
	ScanLibrary
	PlanDownloads
	DownloadTracks
	Cleanup
	ResolveTrack
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case Dedupe:
		return "dedupe"
	case ScanLibrary:
		return "scan_library"
	case PlanDownloads:
		return "plan_downloads"
	case DownloadTracks:
		return "download_tracks"
	case Cleanup:
		return "cleanup"
	case ResolveTrack:
		return "resolve_track"
	default:
		return ""
	}
}

const separator = "----------------------------------------"

func fetchingPlaylistUpdate(link string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: "Getting songs from playlist (this might take a while ...)",
		Data:    link,
	}
}

func foundPlaylistUpdate(pl *models.RemotePlaylist) ProgressUpdate {
	msg := fmt.Sprintf("%s\nName: %s", separator, pl.Name)
	if pl.Owner != "" {
		msg += " by " + pl.Owner
	}
	return ProgressUpdate{Phase: FetchPlaylist, Step: 1, Total: 1, Message: msg, Data: pl}
}

func duplicatesUpdate(dups []models.Track, c models.Convention) ProgressUpdate {
	var b strings.Builder
	fmt.Fprintf(&b, "Duplicate songs: %d", len(dups))
	for _, d := range dups {
		fmt.Fprintf(&b, "\nDuplicate : %s", library.IdentityOf(d, c))
	}
	return ProgressUpdate{Phase: Dedupe, Step: 1, Total: 1, Message: b.String(), Data: dups}
}

func folderRenamedUpdate(original, folder string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%q is not a valid folder name. Using %q instead.", original, folder),
		Warning: true,
	}
}

func planUpdate(plan library.DownloadPlan, name, dir string) ProgressUpdate {
	msg := plan.Summary(name, dir)
	if plan.Outcome == library.Download {
		msg += "\n" + separator
	}
	return ProgressUpdate{Phase: PlanDownloads, Step: 1, Total: 1, Message: msg, Data: plan}
}

func trackStartUpdate(step, total int, identity string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%d/%d: %s", step, total, identity),
	}
}

func trackSkippedUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTracks,
		Step:    step,
		Total:   total,
		Message: "\tThis track already exists in the directory. Skipping download!",
	}
}

func trackFailedUpdate(step, total int, identity string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("\tFailed to download %s: %v", identity, err),
		Warning: true,
	}
}

func coverFailedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("\tCould not embed cover art: %v", err),
		Warning: true,
	}
}

func resolvingTrackUpdate(link string) ProgressUpdate {
	return ProgressUpdate{Phase: ResolveTrack, Step: 1, Total: 1, Message: "Track link identified", Data: link}
}

func downloadingTrackUpdate(identity, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTrack,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Downloading %s to (%s)", identity, dir),
	}
}

func cleanupUpdate(removed []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Cleanup,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removed %d empty or partial file(s)", len(removed)),
		Data:    removed,
	}
}
