package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/nmdb/internal/shared"
	"github.com/desertthunder/nmdb/internal/tasks"
	"github.com/desertthunder/nmdb/internal/ui"
	"github.com/urfave/cli/v3"
)

// Updates writes today's report of recently updated tracks under --output-dir.
func (r *Runner) Updates(ctx context.Context, cmd *cli.Command) error {
	locale, err := shared.NormalizeLocale(cmd.String("locale"))
	if err != nil {
		return err
	}

	reporter := tasks.NewUpdateReporter(r.service(), r.logger)
	path, lines, err := reporter.Report(ctx, nil, locale, cmd.String("output-dir"))
	if err != nil {
		return fmt.Errorf("failed to report updates: %w", err)
	}

	failed := 0
	for _, line := range lines {
		if line.Err != nil {
			failed++
		}
	}

	r.writePlain("%s %d updated tracks written to %s\n", ui.OK("✓"), len(lines), path)
	if failed > 0 {
		r.writePlain("%s %d track names could not be resolved\n", ui.Warn("!"), failed)
	}
	return nil
}
