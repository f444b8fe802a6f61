package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spdl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template when missing and migrates the history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.writePlain("Config file already exists: %s\n", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Created %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(); err != nil {
		return err
	}

	if !config.Database.Enabled {
		r.writePlain("Download history is disabled; skipping database setup\n")
		return nil
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenHistory(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ History database ready: %s\n", config.Database.Path)
	return nil
}
