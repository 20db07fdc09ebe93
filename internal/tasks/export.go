package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nmdb/internal/formatter"
	"github.com/desertthunder/nmdb/internal/models"
	"github.com/desertthunder/nmdb/internal/services"
	"github.com/desertthunder/nmdb/internal/shared"
	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
)

// LockFileName guards a locale's output directory against concurrent exports.
const LockFileName = ".nmdb.lock"

// RunRecorder persists locale export runs (see repositories.RunRepository).
type RunRecorder interface {
	Create(run *models.Run) error
	Update(run *models.Run) error
}

// ExportOpts contains configuration for locale exports.
type ExportOpts struct {
	OutputDir    string // Output root; each locale writes to OutputDir/<locale> (default: output)
	SectionsPath string // Curated sections document
	ListenTitle  string // Common section mapped to Playlists3
	GameWorkers  int    // Games processed concurrently per locale (default: 1)
	Parallel     bool   // Export all locales concurrently
}

// LocaleResult summarizes one locale export.
type LocaleResult struct {
	Locale        string
	Games         int
	Tracks        int
	TablesWritten int
	TablesSkipped int
	SheetsSkipped int
	WorkbookPath  string
	Run           *models.Run // nil without a ledger
	Err           error
}

// ExportEngine runs the fetch, table and workbook pipeline for one or more locales.
type ExportEngine struct {
	catalog services.Catalog
	runs    RunRecorder
	opts    ExportOpts
	logger  *log.Logger
}

// NewExportEngine creates an export engine. runs may be nil to disable the run ledger.
func NewExportEngine(catalog services.Catalog, runs RunRecorder, opts ExportOpts, logger *log.Logger) *ExportEngine {
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &ExportEngine{catalog: catalog, runs: runs, opts: opts, logger: logger}
}

// LocaleDir returns the table directory of locale.
func (e *ExportEngine) LocaleDir(locale string) string {
	return filepath.Join(e.opts.OutputDir, locale)
}

// WorkbookPath returns the workbook path of locale.
func (e *ExportEngine) WorkbookPath(locale string) string {
	return filepath.Join(e.opts.OutputDir, formatter.WorkbookFileName(locale))
}

// ExportAll exports every locale, sequentially or concurrently depending on [ExportOpts.Parallel].
//
// A failing locale does not stop the others. Results are returned in the order of locales; the error
// joins every locale failure, each wrapping [shared.ErrLocaleFailed].
func (e *ExportEngine) ExportAll(ctx context.Context, progress chan<- ProgressUpdate, locales []string) ([]*LocaleResult, error) {
	results := make([]*LocaleResult, len(locales))

	if e.opts.Parallel && len(locales) > 1 {
		var g errgroup.Group
		g.SetLimit(len(locales))
		for i, locale := range locales {
			g.Go(func() error {
				results[i], _ = e.ExportLocale(ctx, progress, locale)
				return nil
			})
		}
		g.Wait()
	} else {
		for i, locale := range locales {
			results[i], _ = e.ExportLocale(ctx, progress, locale)
		}
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", shared.ErrLocaleFailed, res.Locale, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

// ExportLocale builds the catalog of locale, writes missing per-game tables and the catalog table,
// and consolidates everything on disk into the locale's workbook.
//
// The returned result is never nil; its Err mirrors the returned error.
func (e *ExportEngine) ExportLocale(ctx context.Context, progress chan<- ProgressUpdate, locale string) (*LocaleResult, error) {
	result := &LocaleResult{Locale: locale}
	logger := shared.WithLogger(e.logger, "locale", locale)

	fail := func(err error) (*LocaleResult, error) {
		result.Err = err
		logger.Error("export failed", "error", err)
		return result, err
	}

	dir := e.LocaleDir(locale)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fail(fmt.Errorf("failed to lock %s: %w", dir, err))
	}
	if !locked {
		return fail(fmt.Errorf("%w: %s", shared.ErrLocaleLocked, dir))
	}
	defer lock.Unlock()

	run := e.startRun(logger, locale)
	result.Run = run

	err = e.exportLocked(ctx, progress, logger, locale, result)
	e.finishRun(logger, run, result, err)
	if err != nil {
		return fail(err)
	}

	logger.Info("export complete",
		"games", result.Games, "tracks", result.Tracks,
		"written", result.TablesWritten, "skipped", result.TablesSkipped, "workbook", result.WorkbookPath)
	return result, nil
}

func (e *ExportEngine) exportLocked(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	logger *log.Logger,
	locale string,
	result *LocaleResult,
) error {
	dir := e.LocaleDir(locale)

	aggregator := NewAggregator(e.catalog, AggregatorOpts{
		Locale:       locale,
		TableDir:     dir,
		SectionsPath: e.opts.SectionsPath,
		ListenTitle:  e.opts.ListenTitle,
		Workers:      e.opts.GameWorkers,
		Logger:       logger,
		Progress:     progress,
	})
	catalog, err := aggregator.Build(ctx)
	if err != nil {
		return err
	}

	games := catalog.Games()
	result.Games = len(games)
	result.Tracks = catalog.TrackCount()

	for i, game := range games {
		if game.IsLink {
			continue
		}
		if len(game.Tracks) == 0 {
			if formatter.TableExists(dir, game.FileStem) {
				result.TablesSkipped++
			}
			continue
		}
		written, err := formatter.WriteTrackTable(dir, game)
		if err != nil {
			return err
		}
		if written {
			result.TablesWritten++
		} else {
			result.TablesSkipped++
			logger.Debug("table exists, not overwriting", "stem", game.FileStem)
		}
		sendProgress(progress, writeTableUpdate(locale, i+1, len(games), game.FileStem, written))
	}

	catalogPath, err := formatter.WriteCatalogTable(dir, games)
	if err != nil {
		return err
	}

	sheets, skipped, err := e.collectSheets(logger, dir, catalogPath, games)
	if err != nil {
		return err
	}
	result.SheetsSkipped = skipped

	sendProgress(progress, writeWorkbookUpdate(locale, len(sheets)))
	workbook := e.WorkbookPath(locale)
	if err := formatter.WriteWorkbook(workbook, sheets); err != nil {
		return err
	}
	result.WorkbookPath = workbook
	return nil
}

// collectSheets reads back the catalog table and every non-link game's table in catalog order.
func (e *ExportEngine) collectSheets(
	logger *log.Logger,
	dir, catalogPath string,
	games []*models.Game,
) ([]formatter.Sheet, int, error) {
	stems := []string{formatter.CatalogStem}
	tables := []*formatter.Table{}

	catalogTable, err := formatter.ReadTable(catalogPath)
	if err != nil {
		return nil, 0, err
	}
	tables = append(tables, catalogTable)

	skipped := 0
	for _, game := range games {
		if game.IsLink {
			continue
		}
		if !formatter.TableExists(dir, game.FileStem) {
			logger.Warn("no table for game, leaving it out of the workbook", "id", game.ID, "name", game.Name)
			skipped++
			continue
		}
		table, err := formatter.ReadTable(formatter.TablePath(dir, game.FileStem))
		if err != nil {
			return nil, 0, err
		}
		stems = append(stems, game.FileStem)
		tables = append(tables, table)
	}

	names := formatter.SheetNames(stems)
	sheets := make([]formatter.Sheet, len(tables))
	for i, table := range tables {
		sheets[i] = formatter.Sheet{Name: names[i], Table: table}
	}
	return sheets, skipped, nil
}

func (e *ExportEngine) startRun(logger *log.Logger, locale string) *models.Run {
	if e.runs == nil {
		return nil
	}
	run := models.NewRun(locale)
	if err := e.runs.Create(run); err != nil {
		logger.Warn("failed to record run", "error", err)
		return nil
	}
	return run
}

func (e *ExportEngine) finishRun(logger *log.Logger, run *models.Run, result *LocaleResult, err error) {
	if run == nil {
		return
	}
	run.GamesTotal = result.Games
	run.TracksTotal = result.Tracks
	run.TablesWritten = result.TablesWritten
	run.TablesSkipped = result.TablesSkipped
	run.WorkbookPath = result.WorkbookPath
	run.Finish(err)
	if err := e.runs.Update(run); err != nil {
		logger.Warn("failed to update run", "id", run.ID(), "error", err)
	}
}
