package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/desertthunder/nmdb/internal/shared"
	"github.com/desertthunder/nmdb/internal/ui"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded example configuration to --config unless the file already exists.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			r.logger.Warn("config file already exists, leaving it untouched", "path", configPath)
			r.writePlain("%s %s already exists\n", ui.Warn("!"), configPath)
			return nil
		}
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("%s config written to %s\n", ui.OK("✓"), configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set export.locales and export.output_dir in %s\n", configPath)
	r.writePlain("2. Export %s=<token> to enable 'nmdb sections pull'\n", shared.EnvToken)
	r.writePlain("3. Run 'nmdb export' to build the tables and workbooks\n")
	return nil
}

// SetupDatabase initializes the run ledger and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if r.config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("%s run ledger ready at %s\n", ui.OK("✓"), r.config.Database.Path)
	return nil
}
