package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/spdl/internal/formatter"
	"github.com/desertthunder/spdl/internal/manifest"
	"github.com/desertthunder/spdl/internal/shared"
	"github.com/desertthunder/spdl/internal/tasks"
	"github.com/urfave/cli/v3"
)

type syncOpts struct {
	path    string
	noInput bool
	dryRun  bool
	format  formatter.Format
	report  string
}

// Sync runs every playlist of the manifest.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	path := cmd.String("manifest")
	if path == "" {
		path = r.config.Sync.Manifest
	}

	return r.sync(ctx, syncOpts{
		path:    path,
		noInput: cmd.Bool("no-input"),
		dryRun:  cmd.Bool("dry-run"),
		format:  format,
		report:  cmd.String("report"),
	})
}

func (r *Runner) sync(ctx context.Context, opts syncOpts) error {
	logger := r.logger.With("manifest", opts.path)

	m, err := manifest.Load(opts.path)
	if err != nil {
		var reason string
		switch {
		case errors.Is(err, shared.ErrManifestNotFound):
			reason = "Sync file does not exist."
		case errors.Is(err, shared.ErrManifestFormat):
			reason = "Sync file is malformed."
		default:
			return err
		}

		logger.Warn("manifest unusable", "error", err)
		if opts.noInput {
			return err
		}
		return r.createManifest(ctx, opts.path, reason, nil)
	}

	if opts.dryRun {
		return r.planSync(ctx, m, opts)
	}

	r.writePlain("Syncing local playlist folders with Spotify playlists\n")

	rec := r.beginRun(ctx, "sync", opts.path)
	engine := r.newEngine(rec.Recorder())
	progress, stop := r.startProgress(r.output)
	result, err := engine.SyncManifest(ctx, m, false, progress)
	stop()

	planned, downloaded, failedTracks := tally(result.Entries)
	rec.finish(context.WithoutCancel(ctx), r.logger, planned, downloaded, failedTracks)
	if err != nil {
		return err
	}

	failed := result.Failed()
	for _, f := range failed {
		r.writePlain("%s\n", r.painter(r.output).Failure(fmt.Sprintf("%s: %v", f.Link, f.Err)))
	}
	r.writePlain("%s\n", separator)
	r.writePlain("%s\n", r.painter(r.output).Banner("Sync complete!"))

	logger.Info("sync finished", "entries", len(result.Entries), "failed", len(failed), "downloaded", downloaded)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d playlist(s) failed", len(failed), len(result.Entries))
	}
	return nil
}

// planSync prints the download plan of every entry without touching the disk.
// Progress goes to stderr so the report stays machine readable.
func (r *Runner) planSync(ctx context.Context, m *manifest.Manifest, opts syncOpts) error {
	engine := r.newEngine(nil)
	progress, stop := r.startProgress(r.errOutput)
	result, err := engine.SyncManifest(ctx, m, true, progress)
	stop()
	if err != nil {
		return err
	}

	data, err := formatter.RenderPlan(result.Entries, opts.format)
	if err != nil {
		return err
	}

	if opts.report != "" {
		if err := formatter.WriteReport(data, opts.report); err != nil {
			return err
		}
		fmt.Fprintf(r.errOutput, "Report written to %s\n", opts.report)
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// SyncInit runs the manifest wizard, appending to the manifest when it already exists.
func (r *Runner) SyncInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("manifest")
	if path == "" {
		path = r.config.Sync.Manifest
	}

	existing, err := manifest.Load(path)
	switch {
	case err == nil:
		return r.createManifest(ctx, path, "", existing)
	case errors.Is(err, shared.ErrManifestNotFound):
		return r.createManifest(ctx, path, fmt.Sprintf("Sync file %s does not exist.", path), nil)
	default:
		return err
	}
}

// createManifest runs the wizard and saves its result to path.
func (r *Runner) createManifest(ctx context.Context, path, reason string, existing *manifest.Manifest) error {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	m, err := r.wizard(ctx, wizardRequest{
		existing:        existing,
		reason:          reason,
		defaultLocation: wd,
		convention:      r.config.Download.Convention,
		lookup:          r.playlistName,
	})
	if err != nil {
		return err
	}

	if err := manifest.Save(path, m); err != nil {
		return err
	}
	r.logger.Info("manifest saved", "path", path, "entries", m.Len())
	r.writePlain("Sync file created successfully\n")
	r.writePlain("%s\n", separator)
	return nil
}

func (r *Runner) playlistName(ctx context.Context, link string) (string, error) {
	r.buildServices()
	pl, err := r.source.FetchPlaylist(ctx, link)
	if err != nil {
		return "", err
	}
	return pl.Name, nil
}

// tally totals planned, downloaded and failed tracks over link results.
func tally(entries []tasks.LinkResult) (planned, downloaded, failed int) {
	for _, e := range entries {
		switch {
		case e.Playlist != nil:
			planned += e.Playlist.Plan.Len()
			downloaded += e.Playlist.Downloaded()
			failed += len(e.Playlist.Failed())
		case e.Track != nil:
			planned++
			if e.Track.Downloaded {
				downloaded++
			}
			if e.Track.Err != nil {
				failed++
			}
		}
	}
	return planned, downloaded, failed
}
