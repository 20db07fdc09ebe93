package tasks

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nmdb/internal/formatter"
	"github.com/desertthunder/nmdb/internal/services"
	"github.com/desertthunder/nmdb/internal/shared"
)

// UpdateReporter writes the daily report of recently updated tracks.
type UpdateReporter struct {
	feed   services.UpdateFeed
	logger *log.Logger
	now    func() time.Time
}

// NewUpdateReporter creates a reporter over feed.
func NewUpdateReporter(feed services.UpdateFeed, logger *log.Logger) *UpdateReporter {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &UpdateReporter{feed: feed, logger: logger, now: time.Now}
}

// Report lists updated tracks, resolves their names in locale and writes today's report under root.
//
// A failed name lookup is recorded in the report and does not fail the run.
func (r *UpdateReporter) Report(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	locale, root string,
) (string, []formatter.UpdateLine, error) {
	report, err := r.feed.DetectUpdates(ctx)
	if err != nil {
		return "", nil, err
	}
	sendProgress(progress, detectUpdatesUpdate(len(report.UpdatedTracks)))

	lines := make([]formatter.UpdateLine, 0, len(report.UpdatedTracks))
	for i, update := range report.UpdatedTracks {
		line := formatter.UpdateLine{Time: time.Unix(update.UpdatedAt, 0), ID: update.ID}

		track, err := r.feed.Track(ctx, locale, update.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", nil, ctxErr
			}
			r.logger.Warn("failed to look up updated track", "id", update.ID, "error", err)
			line.Err = err
		} else {
			line.Name = track.Name
		}

		r.logger.Info(line.String())
		lines = append(lines, line)
		sendProgress(progress, lookupTrackUpdate(locale, i+1, len(report.UpdatedTracks), update.ID))
	}

	path, err := formatter.WriteUpdateReport(root, r.now(), lines)
	if err != nil {
		return "", nil, err
	}
	return path, lines, nil
}
