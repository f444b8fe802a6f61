// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "spdl",
		Usage: "Download Spotify tracks and playlists, and keep local playlist folders in sync",
		UsageText: "spdl --link URL [--link URL ...] [--outpath DIR]\n" +
			"spdl --sync [sync.json]\n" +
			"spdl <command> [options]",
		Version: "0.1.0",
		Flags: append(linkFlags(true), []cli.Flag{
			&cli.BoolFlag{
				Name:  "sync",
				Usage: "Sync the playlists of a manifest (optional path argument, default sync.json)",
				Local: true,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Mirror the log file on stderr",
			},
		}...),
		Commands: r.register(),
		Action:   r.Root,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		downloadCommand, syncCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// linkFlags are the flags of a link download. local marks them root-only.
func linkFlags(local bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "link",
			Aliases: []string{"l"},
			Usage:   "Spotify track or playlist link (repeatable)",
			Local:   local,
		},
		&cli.StringFlag{
			Name:    "outpath",
			Aliases: []string{"o"},
			Usage:   "Directory to save tracks in (default: download.output or the working directory)",
			Local:   local,
		},
		&cli.BoolFlag{
			Name:  "folder",
			Usage: "Create a folder named after each playlist (default: download.create_folder)",
			Local: local,
		},
		&cli.IntFlag{
			Name:  "convention",
			Usage: "Track naming: 1 = \"Title - Artist\", 2 = \"Artist - Title\" (default: download.convention)",
			Local: local,
		},
	}
}

func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"dl"},
		Usage:     "Download tracks or playlists by link",
		ArgsUsage: "[LINK...]",
		Flags:     linkFlags(false),
		Before:    r.before,
		Action:    r.Download,
	}
}

func syncCommand(r *Runner) *cli.Command {
	manifestFlag := &cli.StringFlag{
		Name:    "manifest",
		Aliases: []string{"m"},
		Usage:   "Path to the sync manifest (default: sync.manifest)",
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Download the tracks missing from every playlist folder in a manifest",
		Flags: []cli.Flag{
			manifestFlag,
			&cli.BoolFlag{
				Name:  "no-input",
				Usage: "Fail instead of starting the wizard when the manifest is missing or malformed",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Only print what would be downloaded",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Dry-run report format: text, csv or markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write the dry-run report to a file instead of stdout",
			},
		},
		Before: r.before,
		Action: r.Sync,
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create or extend a sync manifest interactively",
				Flags:  []cli.Flag{manifestFlag},
				Before: r.before,
				Action: r.SyncInit,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recently downloaded tracks",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of rows",
				Value:   20,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv or markdown",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "runs",
				Usage: "List download and sync runs instead of tracks",
			},
		},
		Before: r.before,
		Action: r.History,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Before: r.before,
		Action: r.Setup,
	}
}
