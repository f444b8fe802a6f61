// package tasks implements playlist and track downloads.
//
// The core abstraction is SyncEngine, which orchestrates playlist syncs, single track downloads and manifest runs.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spdl/internal/library"
	"github.com/desertthunder/spdl/internal/manifest"
	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/services"
	"github.com/desertthunder/spdl/internal/shared"
)

// Target describes where and how the tracks of one link are written.
type Target struct {
	Dir          string            // base destination directory
	CreateFolder bool              // put playlist tracks in a sub-folder named after the playlist
	Convention   models.Convention // identity order
	DryRun       bool              // plan only, write nothing
}

// TrackResult is the outcome of one track of a batch or of a single track download.
type TrackResult struct {
	Identity   string
	Track      models.Track
	Path       string
	Downloaded bool  // a new file was written
	Skipped    bool  // the file already existed
	Err        error // why the track failed, nil on success
}

// PlaylistResult contains all data from one playlist sync.
type PlaylistResult struct {
	Link       string
	Name       string // playlist name as reported by the source
	Owner      string
	Folder     string // sanitized folder name
	Dir        string // resolved destination directory
	Duplicates []models.Track
	Plan       library.DownloadPlan
	Tracks     []TrackResult
	Removed    []string // names deleted by cleanup
}

// Downloaded returns how many files were written.
func (r *PlaylistResult) Downloaded() int {
	n := 0
	for _, t := range r.Tracks {
		if t.Downloaded {
			n++
		}
	}
	return n
}

// Failed returns the track results that carry an error.
func (r *PlaylistResult) Failed() []TrackResult {
	var out []TrackResult
	for _, t := range r.Tracks {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// LinkResult is the outcome of processing one link. Exactly one of Playlist or Track is set unless Err is an
// invalid link error.
type LinkResult struct {
	Link     string
	Kind     services.LinkKind
	Playlist *PlaylistResult
	Track    *TrackResult
	Err      error
}

// ManifestResult contains one [LinkResult] per manifest entry, in manifest order.
type ManifestResult struct {
	Entries []LinkResult
}

// Failed returns the entries that ended with an error.
func (r *ManifestResult) Failed() []LinkResult {
	var out []LinkResult
	for _, e := range r.Entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// SyncEngine defines the download operations.
type SyncEngine interface {
	// SyncPlaylist downloads the tracks of a playlist that are missing from the target folder.
	SyncPlaylist(ctx context.Context, link string, target Target, progress chan<- ProgressUpdate) (*PlaylistResult, error)

	// DownloadTrack downloads a single track link into dir.
	DownloadTrack(ctx context.Context, link, dir string, c models.Convention, progress chan<- ProgressUpdate) (*TrackResult, error)

	// ProcessLink classifies link and runs SyncPlaylist or DownloadTrack.
	ProcessLink(ctx context.Context, link string, target Target, progress chan<- ProgressUpdate) (*LinkResult, error)

	// SyncManifest processes every manifest entry in order.
	SyncManifest(ctx context.Context, m *manifest.Manifest, dryRun bool, progress chan<- ProgressUpdate) (*ManifestResult, error)
}

// Recorder persists written files. Implemented by repositories.HistoryRecorder.
type Recorder interface {
	RecordDownload(ctx context.Context, rec models.DownloadRecord) error
}

// CoverEmbedder writes cover art into an audio file. Implemented by audio.Tagger.
type CoverEmbedder interface {
	EmbedCover(path string, image []byte, track models.Track) error
}

// EngineOpts wires the collaborators of a [DownloadEngine].
type EngineOpts struct {
	Source            services.SnapshotSource
	Resolver          services.TrackResolver
	Downloader        services.Downloader
	Tagger            CoverEmbedder // nil disables cover art
	Recorder          Recorder      // nil disables history
	Workers           int           // concurrent track downloads, default 1
	CreateMissingDirs bool          // create a missing base directory instead of failing
	WaitForProgress   bool          // block on progress sends; the receiver must drain until the call returns
	Logger            *log.Logger
}

// DownloadEngine implements SyncEngine.
type DownloadEngine struct {
	source            services.SnapshotSource
	resolver          services.TrackResolver
	downloader        services.Downloader
	tagger            CoverEmbedder
	recorder          Recorder
	workers           int
	createMissingDirs bool
	waitProgress      bool
	logger            *log.Logger
}

// NewDownloadEngine creates a new DownloadEngine with the provided collaborators.
func NewDownloadEngine(opts EngineOpts) *DownloadEngine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &DownloadEngine{
		source:            opts.Source,
		resolver:          opts.Resolver,
		downloader:        opts.Downloader,
		tagger:            opts.Tagger,
		recorder:          opts.Recorder,
		workers:           opts.Workers,
		createMissingDirs: opts.CreateMissingDirs,
		waitProgress:      opts.WaitForProgress,
		logger:            opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *DownloadEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	if e.waitProgress {
		progress <- update
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *DownloadEngine) ready() error {
	switch {
	case e.source == nil:
		return fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	case e.resolver == nil:
		return fmt.Errorf("%w: track resolver not initialized", shared.ErrServiceUnavailable)
	case e.downloader == nil:
		return fmt.Errorf("%w: downloader not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// SyncPlaylist fetches the playlist, deduplicates it, plans the tracks missing from the destination and downloads
// them. Cleanup of empty and partial files runs after every download has settled.
func (e *DownloadEngine) SyncPlaylist(ctx context.Context, link string, target Target, progress chan<- ProgressUpdate) (*PlaylistResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	logger := e.logger.With("link", link)
	result := &PlaylistResult{Link: link}

	e.sendProgress(progress, fetchingPlaylistUpdate(link))
	pl, err := e.source.FetchPlaylist(ctx, link)
	if err != nil {
		logger.Error("failed to fetch playlist", "error", err)
		return result, err
	}
	result.Name, result.Owner = pl.Name, pl.Owner
	e.sendProgress(progress, foundPlaylistUpdate(pl))

	index, dups := library.Dedupe(pl.Tracks, target.Convention)
	result.Duplicates = dups
	logger.Info("fetched playlist", "name", pl.Name, "tracks", len(pl.Tracks), "unique", index.Len(), "duplicates", len(dups))
	e.sendProgress(progress, duplicatesUpdate(dups, target.Convention))

	name := pl.Name
	if name == "" {
		name = pl.ID
	}
	result.Folder = library.Sanitize(name)
	if result.Folder != name {
		e.sendProgress(progress, folderRenamedUpdate(name, result.Folder))
	}

	result.Dir = target.Dir
	if target.CreateFolder {
		result.Dir = filepath.Join(target.Dir, result.Folder)
	}

	if !target.DryRun {
		if err := e.prepareDir(target.Dir, result.Dir); err != nil {
			logger.Error("destination unavailable", "dir", result.Dir, "error", err)
			return result, err
		}
	}

	existing, err := library.ScanExisting(result.Dir)
	if err != nil {
		return result, err
	}
	result.Plan = library.Plan(index, existing)
	e.sendProgress(progress, planUpdate(result.Plan, result.Folder, result.Dir))

	if result.Plan.Outcome == library.UpToDate || target.DryRun {
		return result, nil
	}

	result.Tracks = e.downloadBatch(ctx, result.Plan.Missing, result.Dir, result.Name, progress)

	removed, err := library.RemoveEmpty(result.Dir)
	result.Removed = removed
	if err != nil {
		logger.Warn("cleanup failed", "dir", result.Dir, "error", err)
	}
	if len(removed) > 0 {
		e.sendProgress(progress, cleanupUpdate(removed))
	}

	logger.Info("playlist synced", "downloaded", result.Downloaded(), "failed", len(result.Failed()))
	return result, ctx.Err()
}

// DownloadTrack resolves and downloads a single track into dir, then removes empty and partial files from dir.
func (e *DownloadEngine) DownloadTrack(ctx context.Context, link, dir string, c models.Convention, progress chan<- ProgressUpdate) (*TrackResult, error) {
	if e.resolver == nil || e.downloader == nil {
		return nil, fmt.Errorf("%w: downloader not initialized", shared.ErrServiceUnavailable)
	}
	logger := e.logger.With("link", link)

	e.sendProgress(progress, resolvingTrackUpdate(link))
	if err := e.prepareDir(dir, dir); err != nil {
		logger.Error("destination unavailable", "dir", dir, "error", err)
		return nil, err
	}

	resolved, err := e.resolver.ResolveTrack(ctx, link)
	if err != nil {
		logger.Error("failed to resolve track", "error", err)
		return &TrackResult{Err: err}, err
	}

	identity := library.IdentityOf(resolved.Track, c)
	e.sendProgress(progress, downloadingTrackUpdate(identity, dir))

	res := e.fetchTrack(ctx, resolved, resolved.Track, identity, dir, "", 1, 1, progress)

	if _, err := library.RemoveEmpty(dir); err != nil {
		logger.Warn("cleanup failed", "dir", dir, "error", err)
	}
	return &res, res.Err
}

// ProcessLink dispatches link to [DownloadEngine.SyncPlaylist] or [DownloadEngine.DownloadTrack].
//
// Links that are neither tracks nor playlists fail with [shared.ErrInvalidLink].
func (e *DownloadEngine) ProcessLink(ctx context.Context, link string, target Target, progress chan<- ProgressUpdate) (*LinkResult, error) {
	res := &LinkResult{Link: link, Kind: services.ClassifyLink(link)}

	switch res.Kind {
	case services.TrackLink:
		if target.DryRun {
			return res, nil
		}
		res.Track, res.Err = e.DownloadTrack(ctx, link, target.Dir, target.Convention, progress)
	case services.PlaylistLink:
		res.Playlist, res.Err = e.SyncPlaylist(ctx, link, target, progress)
	default:
		res.Err = fmt.Errorf("%w: %s", shared.ErrInvalidLink, link)
		e.logger.Error("invalid link", "link", link)
	}
	return res, res.Err
}

// SyncManifest processes the manifest entries in order with each entry's convention. A failing entry is recorded
// and the next one runs; only cancellation stops the loop.
func (e *DownloadEngine) SyncManifest(ctx context.Context, m *manifest.Manifest, dryRun bool, progress chan<- ProgressUpdate) (*ManifestResult, error) {
	result := &ManifestResult{}
	for _, entry := range m.Entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dir := entry.DownloadLocation
		if dir == "" {
			dir = "."
		}
		c := entry.Convention
		if !c.Valid() {
			c = m.DefaultConvention
		}

		res, err := e.ProcessLink(ctx, entry.Link, Target{Dir: dir, CreateFolder: entry.CreateFolder, Convention: c, DryRun: dryRun}, progress)
		if err != nil {
			e.logger.Error("manifest entry failed", "link", entry.Link, "name", entry.Name, "error", err)
		}
		result.Entries = append(result.Entries, *res)
	}
	return result, nil
}

// prepareDir applies the directory policy: the base directory must exist unless missing directories may be
// created; a playlist sub-folder is always created.
func (e *DownloadEngine) prepareDir(base, dir string) error {
	if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
		if !e.createMissingDirs {
			return fmt.Errorf("%w: %s", shared.ErrDestinationMissing, base)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check %s: %w", base, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
