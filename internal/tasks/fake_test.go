package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/nmdb/internal/services"
	"github.com/desertthunder/nmdb/internal/shared"
)

// fakeCatalog is an in-memory [services.Catalog] and [services.UpdateFeed].
type fakeCatalog struct {
	mu          sync.Mutex
	games       []services.GameSummary
	related     map[string][]services.GameSummary
	descriptors map[string]*services.RelatedPlaylists
	playlists   map[string]*services.Playlist
	groups      *services.GameGroups
	updates     *services.UpdateReport
	tracks      map[string]*services.TrackData
	failures    map[string]error
	suffixLang  bool
	calls       map[string]int
	langs       map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		related:     make(map[string][]services.GameSummary),
		descriptors: make(map[string]*services.RelatedPlaylists),
		playlists:   make(map[string]*services.Playlist),
		groups:      &services.GameGroups{},
		updates:     &services.UpdateReport{},
		tracks:      make(map[string]*services.TrackData),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
		langs:       make(map[string]int),
	}
}

func (f *fakeCatalog) record(key, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if lang != "" {
		f.langs[lang]++
	}
	return f.failures[key]
}

func (f *fakeCatalog) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeCatalog) fail(key string) {
	f.failures[key] = fmt.Errorf("%w: injected failure for %s", shared.ErrRetriesExhausted, key)
}

func (f *fakeCatalog) name(lang, name string) string {
	if f.suffixLang {
		return name + " " + lang
	}
	return name
}

func (f *fakeCatalog) AllGames(ctx context.Context, lang string) ([]services.GameSummary, error) {
	if err := f.record("games", lang); err != nil {
		return nil, err
	}
	out := make([]services.GameSummary, len(f.games))
	for i, g := range f.games {
		g.Name = f.name(lang, g.Name)
		out[i] = g
	}
	return out, nil
}

func (f *fakeCatalog) RelatedGames(ctx context.Context, lang, gameID string) ([]services.GameSummary, error) {
	if err := f.record("related:"+gameID, lang); err != nil {
		return nil, err
	}
	return f.related[gameID], nil
}

func (f *fakeCatalog) RelatedPlaylists(ctx context.Context, lang, gameID string) (*services.RelatedPlaylists, error) {
	if err := f.record("relatedPlaylists:"+gameID, lang); err != nil {
		return nil, err
	}
	d, ok := f.descriptors[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: no descriptor for %s", shared.ErrRetriesExhausted, gameID)
	}
	return d, nil
}

func (f *fakeCatalog) Playlist(ctx context.Context, lang, playlistID string) (*services.Playlist, error) {
	if err := f.record("playlist:"+playlistID, lang); err != nil {
		return nil, err
	}
	p, ok := f.playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: no playlist %s", shared.ErrRetriesExhausted, playlistID)
	}
	return p, nil
}

func (f *fakeCatalog) GameGroups(ctx context.Context, lang, policy string) (*services.GameGroups, error) {
	if err := f.record("groups:"+policy, lang); err != nil {
		return nil, err
	}
	return f.groups, nil
}

func (f *fakeCatalog) DetectUpdates(ctx context.Context) (*services.UpdateReport, error) {
	if err := f.record("updates", ""); err != nil {
		return nil, err
	}
	return f.updates, nil
}

func (f *fakeCatalog) Track(ctx context.Context, lang, trackID string) (*services.TrackData, error) {
	if err := f.record("track:"+trackID, lang); err != nil {
		return nil, err
	}
	t, ok := f.tracks[trackID]
	if !ok {
		return nil, fmt.Errorf("%w: no track %s", shared.ErrRetriesExhausted, trackID)
	}
	return t, nil
}

func flat(ms int) services.Media {
	return services.Media{PayloadList: []services.Payload{{DurationMillis: ms}}}
}

func looped(flatMs, composedMs int) services.Media {
	return services.Media{PayloadList: []services.Payload{{
		DurationMillis:        flatMs,
		ContainsLoopableMedia: true,
		LoopableMedia:         &services.LoopableMedia{Composed: services.Composed{DurationMillis: composedMs}},
	}}}
}

// scenarioCatalog builds three games listed newest first: A is a link game, B has two tracks with
// b2 marked best, and C has one track that appears in two misc playlists and a LOOP playlist.
func scenarioCatalog() *fakeCatalog {
	f := newFakeCatalog()
	f.games = []services.GameSummary{
		{ID: "A", Name: "Alpha Link", FormalHardware: "Nintendo Switch", IsGameLink: true},
		{ID: "B", Name: "Bravo", FormalHardware: "Wii"},
		{ID: "C", Name: "Charlie", FormalHardware: "GameCube", ThumbnailURL: "https://img/c.png"},
	}
	f.related["A"] = []services.GameSummary{{ID: "B", Name: "Bravo"}}
	f.related["B"] = []services.GameSummary{{ID: "C", Name: "Charlie"}, {ID: "X", Name: "Xeno"}}

	f.descriptors["B"] = &services.RelatedPlaylists{
		AllPlaylist: services.PlaylistRef{ID: "B-all"},
		BestPlaylist: &services.Playlist{Tracks: []services.TrackData{
			{ID: "b2"},
			{ID: "zz-unknown"},
		}},
	}
	f.playlists["B-all"] = &services.Playlist{ID: "B-all", Name: "All", Tracks: []services.TrackData{
		{ID: "b1", Name: "Bravo Theme", Game: services.GameRef{ID: "B"}, Media: flat(61001)},
		{ID: "b2", Name: "Bravo Battle", Game: services.GameRef{ID: "B"}, Media: looped(90000, 120000)},
	}}

	f.descriptors["C"] = &services.RelatedPlaylists{
		AllPlaylist: services.PlaylistRef{ID: "C-all"},
		MiscPlaylistSet: services.MiscPlaylistSet{OfficialPlaylists: []services.PlaylistRef{
			{ID: "C-p1", Name: "Relax", Type: "NORMAL"},
			{ID: "C-p2", Name: "Adventure", Type: "NORMAL"},
			{ID: "C-loop", Name: "Loops", Type: services.PlaylistTypeLoop},
		}},
	}
	c1 := services.TrackData{ID: "c1", Name: "Charlie Waltz", Game: services.GameRef{ID: "C"}, Media: flat(30000)}
	f.playlists["C-all"] = &services.Playlist{ID: "C-all", Tracks: []services.TrackData{c1}}
	f.playlists["C-p1"] = &services.Playlist{ID: "C-p1", Name: "Relax", Tracks: []services.TrackData{c1}}
	f.playlists["C-p2"] = &services.Playlist{ID: "C-p2", Name: "Adventure", Tracks: []services.TrackData{c1, {ID: "nope"}}}
	f.playlists["C-loop"] = &services.Playlist{ID: "C-loop", Name: "Loops", Tracks: []services.TrackData{c1}}

	f.groups = &services.GameGroups{ReleasedAt: []services.ReleaseGroup{
		{ReleasedYear: 2001, Items: []services.GameSummary{{ID: "C"}}},
		{ReleasedYear: 2006, Items: []services.GameSummary{{ID: "B"}, {ID: "missing"}}},
	}}
	return f
}
