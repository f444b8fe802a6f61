package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/shared"
	"github.com/desertthunder/spdl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Root runs a link download or, with --sync, a manifest sync.
func (r *Runner) Root(ctx context.Context, cmd *cli.Command) error {
	ctx, err := r.before(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("sync") {
		path := cmd.Args().First()
		if path == "" {
			path = r.config.Sync.Manifest
		}
		return r.sync(ctx, syncOpts{path: path})
	}

	if len(cmd.StringSlice("link")) == 0 && cmd.Args().Len() == 0 {
		return fmt.Errorf("%w: provide --link or --sync (see spdl --help)", shared.ErrMissingArgument)
	}
	return r.Download(ctx, cmd)
}

// Download processes every --link (and positional link) in order.
//
// A failing link is reported and the next one runs.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	links := append(cmd.StringSlice("link"), cmd.Args().Slice()...)
	if len(links) == 0 {
		return fmt.Errorf("%w: at least one --link is required", shared.ErrMissingArgument)
	}

	target, err := r.downloadTarget(cmd)
	if err != nil {
		return err
	}

	rec := r.beginRun(ctx, "download", strings.Join(links, " "))
	engine := r.newEngine(rec.Recorder())
	progress, stop := r.startProgress(r.output)

	var results, failed []tasks.LinkResult
	for _, link := range links {
		res, err := engine.ProcessLink(ctx, link, target, progress)
		if res == nil {
			res = &tasks.LinkResult{Link: link}
		}
		if err != nil {
			res.Err = err
			failed = append(failed, *res)
		}
		results = append(results, *res)

		if ctx.Err() != nil {
			break
		}
	}
	stop()

	planned, downloaded, failedTracks := tally(results)
	rec.finish(context.WithoutCancel(ctx), r.logger, planned, downloaded, failedTracks)

	for _, f := range failed {
		r.writePlain("%s\n", r.painter(r.output).Failure(fmt.Sprintf("%s: %v", f.Link, f.Err)))
	}
	r.writePlainln("%s Task complete ;) %s", separator[:25], separator[:25])

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d link(s) failed", len(failed), len(links))
	}
	return nil
}

// downloadTarget merges the link flags over the [download] config section.
func (r *Runner) downloadTarget(cmd *cli.Command) (tasks.Target, error) {
	dir := cmd.String("outpath")
	if dir == "" {
		dir = r.config.Download.Output
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return tasks.Target{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	createFolder := r.config.Download.CreateFolder
	if cmd.IsSet("folder") {
		createFolder = cmd.Bool("folder")
	}

	code := r.config.Download.Convention
	if cmd.IsSet("convention") {
		code = int(cmd.Int("convention"))
	}
	convention, err := models.ParseConvention(code)
	if err != nil {
		return tasks.Target{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	return tasks.Target{Dir: dir, CreateFolder: createFolder, Convention: convention}, nil
}
