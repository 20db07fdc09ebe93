package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/nmdb/internal/models"
	"github.com/desertthunder/nmdb/internal/repositories"
	"github.com/desertthunder/nmdb/internal/services"
	"github.com/desertthunder/nmdb/internal/shared"
	"github.com/desertthunder/nmdb/internal/tasks"
	"github.com/desertthunder/nmdb/internal/ui"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// Export fetches every requested locale and writes its tables and workbook, then prints a summary.
//
// Locales come from --locale or export.locales. A failed locale does not stop the others but makes the command fail.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringSlice("locale")
	if len(raw) == 0 {
		raw = r.config.Export.Locales
	}
	locales, err := shared.NormalizeLocales(raw)
	if err != nil {
		return err
	}
	if len(locales) == 0 {
		return fmt.Errorf("%w: no locales to export", shared.ErrMissingArgument)
	}

	db, err := r.openLedger()
	if err != nil {
		return err
	}
	var runs tasks.RunRecorder
	if db != nil {
		defer db.Close()
		runs = repositories.NewRunRepository(db)
	}

	engine := tasks.NewExportEngine(r.service(), runs, tasks.ExportOpts{
		OutputDir:    r.config.Export.OutputDir,
		SectionsPath: r.config.Export.SectionsPath,
		ListenTitle:  r.config.Export.ListenTitle,
		GameWorkers:  r.config.Export.GameWorkers,
		Parallel:     r.config.Export.Parallel || cmd.Bool("parallel"),
	}, r.logger)

	r.logger.Info("starting export", "locales", locales, "output", r.config.Export.OutputDir)

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message,
				"locale", update.Locale, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	results, exportErr := engine.ExportAll(ctx, progress, locales)
	close(progress)
	<-done

	r.writePlain("%s\n", ui.Title("Export summary"))
	r.writePlain("%s\n", ui.RenderTable(
		[]string{"Locale", "Status", "Games", "Tracks", "Written", "Skipped", "Workbook", "Size"},
		summaryRows(results),
		[]ui.Alignment{
			ui.AlignLeft, ui.AlignLeft, ui.AlignRight, ui.AlignRight,
			ui.AlignRight, ui.AlignRight, ui.AlignLeft, ui.AlignRight,
		},
	))

	exhausted := false
	for _, res := range results {
		if res.Err != nil {
			r.writePlain("%s %s: %v\n", ui.Err("✗"), res.Locale, res.Err)
			exhausted = exhausted || services.IsExhausted(res.Err)
		}
	}
	if exhausted {
		r.writePlain("%s\n", ui.Help("the catalog API kept failing; retry later or raise fetch.max_attempts"))
	}

	return exportErr
}

func summaryRows(results []*tasks.LocaleResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := string(models.RunSucceeded)
		if res.Err != nil {
			status = string(models.RunFailed)
		}

		size := "-"
		if res.WorkbookPath != "" {
			if info, err := os.Stat(res.WorkbookPath); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
		}

		workbook := res.WorkbookPath
		if workbook == "" {
			workbook = "-"
		}

		rows = append(rows, []string{
			res.Locale,
			ui.Status(status),
			strconv.Itoa(res.Games),
			strconv.Itoa(res.Tracks),
			strconv.Itoa(res.TablesWritten),
			strconv.Itoa(res.TablesSkipped),
			workbook,
			size,
		})
	}
	return rows
}
