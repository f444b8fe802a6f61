package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spdl/internal/formatter"
	"github.com/desertthunder/spdl/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recent downloads, or runs with --runs.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	limit := int(cmd.Int("limit"))

	history, err := r.openHistory()
	if err != nil {
		return err
	}
	if history == nil {
		return fmt.Errorf("%w: download history is disabled (database.enabled = false)", shared.ErrServiceUnavailable)
	}

	var data []byte
	if cmd.Bool("runs") {
		runs, err := history.Runs.Recent(ctx, limit)
		if err != nil {
			return err
		}
		data, err = formatter.RenderRuns(runs, format)
		if err != nil {
			return err
		}
	} else {
		records, err := history.Downloads.Recent(ctx, limit)
		if err != nil {
			return err
		}
		data, err = formatter.RenderHistory(records, format)
		if err != nil {
			return err
		}
	}

	return r.writePlain("%s", data)
}
