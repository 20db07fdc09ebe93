package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nmdb/internal/formatter"
	"github.com/desertthunder/nmdb/internal/models"
	"github.com/desertthunder/nmdb/internal/services"
	"github.com/desertthunder/nmdb/internal/shared"
	"golang.org/x/sync/errgroup"
)

// DefaultListenTitle is the name of the common section whose playlists feed [models.Track.Playlists3].
const DefaultListenTitle = "听听看吧"

// AggregatorOpts contains configuration for building one locale's catalog.
type AggregatorOpts struct {
	Locale       string                // Locale sent as lang on every request
	TableDir     string                // Directory holding the locale's per-game tables
	SectionsPath string                // Curated sections document; empty or missing disables sections
	ListenTitle  string                // Common section mapped to Playlists3 (default: [DefaultListenTitle])
	Workers      int                   // Games processed concurrently (default: 1)
	Logger       *log.Logger           // Defaults to a discarding logger
	Progress     chan<- ProgressUpdate // Optional
}

// Aggregator assembles a [models.Catalog] for a single locale.
type Aggregator struct {
	catalog services.Catalog
	opts    AggregatorOpts
	logger  *log.Logger
}

// NewAggregator creates an aggregator reading from catalog.
func NewAggregator(catalog services.Catalog, opts AggregatorOpts) *Aggregator {
	if opts.ListenTitle == "" {
		opts.ListenTitle = DefaultListenTitle
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return &Aggregator{catalog: catalog, opts: opts, logger: opts.Logger}
}

// Build enumerates every game, fills in tracks and playlist membership, and resolves release years.
//
// Any fetch that exhausts its retries aborts the build.
func (a *Aggregator) Build(ctx context.Context) (*models.Catalog, error) {
	catalog, err := a.enumerate(ctx)
	if err != nil {
		return nil, err
	}

	games := catalog.Games()
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for _, game := range games {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := a.buildGame(gctx, game); err != nil {
				return err
			}
			sendProgress(a.opts.Progress, fetchGameUpdate(a.opts.Locale, int(done.Add(1)), len(games), game.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := a.applySections(ctx, catalog); err != nil {
		return nil, err
	}
	if err := a.resolveYears(ctx, catalog); err != nil {
		return nil, err
	}

	return catalog, nil
}

// enumerate lists all games and assigns indices so the oldest game is 1 and the newest is N.
func (a *Aggregator) enumerate(ctx context.Context) (*models.Catalog, error) {
	summaries, err := a.catalog.AllGames(ctx, a.opts.Locale)
	if err != nil {
		return nil, err
	}

	unique := make([]services.GameSummary, 0, len(summaries))
	seen := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		if seen[s.ID] {
			a.logger.Warn("duplicate game in listing", "id", s.ID, "name", s.Name)
			continue
		}
		seen[s.ID] = true
		unique = append(unique, s)
	}

	catalog := models.NewCatalog(a.opts.Locale)
	for pos, s := range unique {
		game := models.NewGame(s.ID, s.Name, len(unique)-pos)
		game.Hardware = s.FormalHardware
		game.IsLink = s.IsGameLink
		game.ThumbnailURL = s.ThumbnailURL
		catalog.Add(game)
	}
	formatter.AssignFileStems(catalog.Games())

	sendProgress(a.opts.Progress, listGamesUpdate(a.opts.Locale, catalog.Len()))
	return catalog, nil
}

// buildGame runs the per-game steps. It only mutates game.
func (a *Aggregator) buildGame(ctx context.Context, game *models.Game) error {
	a.logger.Info("game", "id", game.ID, "name", game.Name)

	related, err := a.catalog.RelatedGames(ctx, a.opts.Locale, game.ID)
	if err != nil {
		return err
	}
	for _, r := range related {
		game.RelatedGames.Add(r.Name)
	}

	if game.IsLink {
		return nil
	}
	if formatter.TableExists(a.opts.TableDir, game.FileStem) {
		a.logger.Debug("table exists, skipping tracks", "id", game.ID, "stem", game.FileStem)
		return nil
	}

	descriptor, err := a.catalog.RelatedPlaylists(ctx, a.opts.Locale, game.ID)
	if err != nil {
		return err
	}
	all, err := a.catalog.Playlist(ctx, a.opts.Locale, descriptor.AllPlaylist.ID)
	if err != nil {
		return err
	}

	for pos, data := range all.Tracks {
		if _, ok := game.Track(data.ID); ok {
			a.logger.Warn("duplicate track in playlist", "game", game.Name, "id", data.ID)
			continue
		}
		track := models.NewTrack(data.ID, data.Name, pos+1)
		track.ThumbnailURL = data.ThumbnailURL
		a.applyMedia(game, track, data.Media)
		game.AddTrack(track)
	}

	if descriptor.BestPlaylist != nil {
		for _, data := range descriptor.BestPlaylist.Tracks {
			if track, ok := game.Track(data.ID); ok {
				track.IsBest = true
			}
		}
	}

	for _, ref := range descriptor.MiscPlaylistSet.OfficialPlaylists {
		if ref.Type == services.PlaylistTypeLoop {
			continue
		}
		playlist, err := a.catalog.Playlist(ctx, a.opts.Locale, ref.ID)
		if err != nil {
			return err
		}
		for _, data := range playlist.Tracks {
			if track, ok := game.Track(data.ID); ok {
				track.Playlists.Add(ref.Name)
			}
		}
	}

	return nil
}

// applyMedia sets duration and loop flag from the primary payload. The composed loop length wins over the flat one.
func (a *Aggregator) applyMedia(game *models.Game, track *models.Track, media services.Media) {
	payload, ok := media.Primary()
	if !ok {
		a.logger.Warn("track has no media payload", "game", game.Name, "track", track.Name)
		return
	}

	track.Duration = payload.DurationMillis
	if !payload.ContainsLoopableMedia {
		return
	}

	track.IsLoop = true
	if payload.LoopableMedia == nil {
		a.logger.Warn("loopable track has no composed media", "game", game.Name, "track", track.Name)
		return
	}

	composed := payload.LoopableMedia.Composed.DurationMillis
	if composed != payload.DurationMillis {
		a.logger.Warn("loop duration differs from payload duration",
			"game", game.Name, "track", track.Name, "payload", payload.DurationMillis, "composed", composed)
	}
	track.Duration = composed
}

// LoadSections reads a curated sections document. A missing file yields (nil, nil).
func LoadSections(path string) (*services.SectionsDocument, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sections document: %w", err)
	}

	var doc services.SectionsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: sections document %s: %v", shared.ErrUnexpectedPayload, path, err)
	}
	return &doc, nil
}

// applySections maps curated section playlists onto the catalog's tracks.
func (a *Aggregator) applySections(ctx context.Context, catalog *models.Catalog) error {
	doc, err := LoadSections(a.opts.SectionsPath)
	if err != nil {
		return err
	}
	if doc == nil {
		a.logger.Warn("sections document not found, skipping curated playlists", "path", a.opts.SectionsPath)
		return nil
	}

	type target struct {
		ref    services.PlaylistRef
		listen bool
	}
	var targets []target
	for _, section := range doc.MiscSections {
		for _, ref := range section.Playlists {
			targets = append(targets, target{ref: ref})
		}
	}
	for _, section := range doc.CommonSections {
		if section.Name != a.opts.ListenTitle {
			continue
		}
		for _, ref := range section.Playlists {
			targets = append(targets, target{ref: ref, listen: true})
		}
	}

	fetched := make(map[string]*services.Playlist)
	for i, t := range targets {
		playlist, ok := fetched[t.ref.ID]
		if !ok {
			playlist, err = a.catalog.Playlist(ctx, a.opts.Locale, t.ref.ID)
			if err != nil {
				return err
			}
			fetched[t.ref.ID] = playlist
		}

		for _, data := range playlist.Tracks {
			game, ok := catalog.Game(data.Game.ID)
			if !ok {
				continue
			}
			track, ok := game.Track(data.ID)
			if !ok {
				continue
			}
			if t.listen {
				track.Playlists3.Add(playlist.Name)
			} else {
				track.Playlists2.Add(playlist.Name)
			}
		}
		sendProgress(a.opts.Progress, sectionUpdate(a.opts.Locale, i+1, len(targets), playlist.Name))
	}
	return nil
}

// resolveYears sets the release year of every game found in the release-date grouping.
func (a *Aggregator) resolveYears(ctx context.Context, catalog *models.Catalog) error {
	sendProgress(a.opts.Progress, resolveYearsUpdate(a.opts.Locale))

	groups, err := a.catalog.GameGroups(ctx, a.opts.Locale, services.GroupingReleaseDate)
	if err != nil {
		return err
	}
	for _, group := range groups.ReleasedAt {
		for _, item := range group.Items {
			if game, ok := catalog.Game(item.ID); ok {
				game.Year = group.ReleasedYear
			}
		}
	}
	return nil
}
