package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/spdl/internal/library"
	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
	"golang.org/x/sync/errgroup"
)

// downloadBatch runs the track pipeline for every entry of plan on the worker pool and returns one result per
// entry in plan order. It returns only after every worker has finished.
func (e *DownloadEngine) downloadBatch(ctx context.Context, plan *library.TrackIndex, dir, playlist string, progress chan<- ProgressUpdate) []TrackResult {
	total := plan.Len()
	results := make([]TrackResult, total)

	var g errgroup.Group
	g.SetLimit(e.workers)

	plan.Each(func(i int, identity string, track models.Track) bool {
		slot := &results[i-1]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				*slot = TrackResult{Identity: identity, Track: track, Err: err}
				return nil
			}

			e.sendProgress(progress, trackStartUpdate(i, total, identity))
			*slot = e.pipeline(ctx, identity, track, dir, playlist, i, total, progress)
			return nil
		})
		return true
	})
	_ = g.Wait()

	return results
}

// pipeline resolves one playlist track and hands it to fetchTrack.
func (e *DownloadEngine) pipeline(ctx context.Context, identity string, track models.Track, dir, playlist string, step, total int, progress chan<- ProgressUpdate) TrackResult {
	logger := e.logger.With("track", identity)

	link := track.Link()
	if link == "" {
		err := fmt.Errorf("%w: track has no source id", shared.ErrTrackNotFound)
		logger.Error("cannot resolve track", "error", err)
		e.sendProgress(progress, trackFailedUpdate(step, total, identity, err))
		return TrackResult{Identity: identity, Track: track, Err: err}
	}

	resolved, err := e.resolver.ResolveTrack(ctx, link)
	if err != nil {
		logger.Error("failed to resolve track", "link", link, "error", err)
		e.sendProgress(progress, trackFailedUpdate(step, total, identity, err))
		return TrackResult{Identity: identity, Track: track, Err: err}
	}

	return e.fetchTrack(ctx, resolved, mergeTrack(track, resolved.Track), identity, dir, playlist, step, total, progress)
}

// fetchTrack downloads the audio, embeds the cover when a new file was written and records it.
func (e *DownloadEngine) fetchTrack(ctx context.Context, resolved *models.ResolvedTrack, track models.Track, identity, dir, playlist string, step, total int, progress chan<- ProgressUpdate) TrackResult {
	logger := e.logger.With("track", identity)
	dest := filepath.Join(dir, library.AudioFileName(identity))
	res := TrackResult{Identity: identity, Track: track, Path: dest}

	written, err := e.downloader.Download(ctx, resolved.AudioURL, dest)
	if err != nil {
		logger.Error("download failed", "url", resolved.AudioURL, "error", err)
		e.sendProgress(progress, trackFailedUpdate(step, total, identity, err))
		res.Err = err
		return res
	}
	if !written {
		logger.Info("already exists, skipping", "path", dest)
		e.sendProgress(progress, trackSkippedUpdate(step, total))
		res.Skipped = true
		return res
	}
	res.Downloaded = true

	if e.tagger != nil {
		if err := e.embedCover(ctx, dest, track); err != nil {
			logger.Warn("cover art not embedded", "error", err)
			e.sendProgress(progress, coverFailedUpdate(step, total, err))
		}
	}

	if e.recorder != nil {
		rec := models.DownloadRecord{
			ID:           shared.GenerateID(),
			Identity:     identity,
			SourceID:     track.SourceID,
			Title:        track.Title,
			Artist:       track.Artist(),
			Album:        track.Album,
			Playlist:     playlist,
			Path:         dest,
			DownloadedAt: time.Now().UTC(),
		}
		if err := e.recorder.RecordDownload(ctx, rec); err != nil {
			logger.Warn("failed to record download", "error", err)
		}
	}

	logger.Info("downloaded", "path", dest)
	return res
}

func (e *DownloadEngine) embedCover(ctx context.Context, path string, track models.Track) error {
	var image []byte
	if track.CoverURL != "" {
		data, err := e.downloader.Fetch(ctx, track.CoverURL)
		if err != nil {
			// Text frames are still worth writing.
			_ = e.tagger.EmbedCover(path, nil, track)
			return fmt.Errorf("fetch cover: %w", err)
		}
		image = data
	}
	return e.tagger.EmbedCover(path, image, track)
}

// mergeTrack fills empty fields of the playlist track from the resolved metadata.
func mergeTrack(planned, resolved models.Track) models.Track {
	out := planned
	if out.Title == "" {
		out.Title = resolved.Title
	}
	if len(out.Artists) == 0 {
		out.Artists = resolved.Artists
	}
	if out.Album == "" {
		out.Album = resolved.Album
	}
	if resolved.CoverURL != "" {
		out.CoverURL = resolved.CoverURL
	}
	return out
}
