package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytclone/internal/shared"
)

// Setup writes the example config when none exists, stores any client credentials given as flags and migrates
// the configured database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); os.IsNotExist(err) {
			if err := shared.CreateConfigFile(r.configPath); err != nil {
				return err
			}
			r.logger.Info("config file created", "path", r.configPath)
		}

		if id, secret := cmd.String("client-id"), cmd.String("client-secret"); id != "" || secret != "" {
			if id == "" || secret == "" {
				return fmt.Errorf("%w: --client-id and --client-secret must be given together", shared.ErrInvalidArgument)
			}
			r.config.Credentials.ClientID, r.config.Credentials.ClientSecret = id, secret
			if err := shared.SaveConfig(r.configPath, r.config); err != nil {
				return err
			}
			r.logger.Info("client credentials saved", "path", r.configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := r.database()
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	// databases opened by the runner are already migrated, injected ones may not be
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Info("setup complete", "database", r.config.Database.Path)
	if _, _, err := r.config.Credentials.ResolveClient(); err != nil {
		r.writePlain("Add your OAuth client to %s, then run: ytclone auth\n", r.configPath)
	} else {
		r.writePlain("Next, run: ytclone auth\n")
	}
	return nil
}
