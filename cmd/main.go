package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/desertthunder/spdl/internal/shared"
)

const configPath = "config.toml"

func main() {
	shared.LoadEnv()

	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spdl: %v\n", err)
		os.Exit(1)
	}

	runner := NewRunner(RunnerOpts{Config: config})
	defer runner.Close()

	app := rootCommand(runner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		os.Exit(runner.exitCode(err))
	}
}

// loadConfig reads path when it exists and applies SPDL_* overrides.
func loadConfig(path string) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

// exitCode logs err in full and prints one short line for the user.
//
// A declined prompt is a clean exit.
func (r *Runner) exitCode(err error) int {
	if errors.Is(err, shared.ErrUserDeclined) {
		r.logger.Info("declined by user")
		fmt.Fprintln(r.errOutput, "Exiting program")
		return 0
	}

	r.logger.Error("application error", "error", err)
	line, _, _ := strings.Cut(err.Error(), "\n")
	fmt.Fprintln(r.errOutput, r.painter(r.errOutput).Failure("spdl: "+line))
	return 1
}
