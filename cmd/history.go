package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/nmdb/internal/models"
	"github.com/desertthunder/nmdb/internal/repositories"
	"github.com/desertthunder/nmdb/internal/shared"
	"github.com/desertthunder/nmdb/internal/ui"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// runView is the JSON shape of a ledger entry.
type runView struct {
	ID            string     `json:"id"`
	Sequence      int        `json:"sequence"`
	Locale        string     `json:"locale"`
	Status        string     `json:"status"`
	Games         int        `json:"games"`
	Tracks        int        `json:"tracks"`
	TablesWritten int        `json:"tablesWritten"`
	TablesSkipped int        `json:"tablesSkipped"`
	WorkbookPath  string     `json:"workbookPath,omitempty"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
}

// History lists recorded export runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openLedger()
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("%w: database.path is empty, the run ledger is disabled", shared.ErrInvalidConfig)
	}
	defer db.Close()

	locale := cmd.String("locale")
	if locale != "" {
		if locale, err = shared.NormalizeLocale(locale); err != nil {
			return err
		}
	}

	runs, err := repositories.NewRunRepository(db).List(locale, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, 0, len(runs))
		for _, run := range runs {
			views = append(views, newRunView(run))
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		r.writePlain("%s\n", ui.Help("no runs recorded"))
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.Itoa(run.Sequence()),
			run.Locale,
			ui.Status(string(run.Status)),
			strconv.Itoa(run.GamesTotal),
			strconv.Itoa(run.TracksTotal),
			strconv.Itoa(run.TablesWritten),
			humanize.Time(run.StartedAt),
			run.Elapsed().Round(time.Second).String(),
		})
	}

	r.writePlain("%s\n", ui.RenderTable(
		[]string{"#", "Locale", "Status", "Games", "Tracks", "Written", "Started", "Elapsed"},
		rows,
		[]ui.Alignment{
			ui.AlignRight, ui.AlignLeft, ui.AlignLeft, ui.AlignRight,
			ui.AlignRight, ui.AlignRight, ui.AlignLeft, ui.AlignRight,
		},
	))
	return nil
}

func newRunView(run *models.Run) runView {
	return runView{
		ID:            run.ID(),
		Sequence:      run.Sequence(),
		Locale:        run.Locale,
		Status:        string(run.Status),
		Games:         run.GamesTotal,
		Tracks:        run.TracksTotal,
		TablesWritten: run.TablesWritten,
		TablesSkipped: run.TablesSkipped,
		WorkbookPath:  run.WorkbookPath,
		Error:         run.ErrorMessage,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
	}
}
