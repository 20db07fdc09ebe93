// package models defines the data model for the catalog exporter
package models

import (
	"sort"
	"strings"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// StringSet is an unordered set of strings.
type StringSet map[string]struct{}

// NewStringSet returns a set holding values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v into the set.
func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Join returns the sorted members joined by sep.
func (s StringSet) Join(sep string) string {
	return strings.Join(s.Sorted(), sep)
}

// Track is a single entry of a game's canonical track listing.
type Track struct {
	ID           string
	Index        int // 1-based position in the game's "all tracks" playlist
	Name         string
	Duration     int // milliseconds
	IsLoop       bool
	IsBest       bool
	Playlists    StringSet // per-game misc playlists
	Playlists2   StringSet // curated sections
	Playlists3   StringSet // the listen-and-see section
	ThumbnailURL string
}

// NewTrack returns a track with empty membership sets.
func NewTrack(id, name string, index int) *Track {
	return &Track{
		ID:         id,
		Index:      index,
		Name:       name,
		Playlists:  StringSet{},
		Playlists2: StringSet{},
		Playlists3: StringSet{},
	}
}

// Game is a catalog title. Link games alias another title and never own tracks.
type Game struct {
	ID           string
	Index        int // oldest release = 1
	Name         string
	Year         int // 0 until resolved
	Hardware     string
	RelatedGames StringSet
	IsLink       bool
	ThumbnailURL string
	FileStem     string // run-unique, filesystem-safe table name
	Tracks       map[string]*Track
}

// NewGame returns a game with empty related-game and track mappings.
func NewGame(id, name string, index int) *Game {
	return &Game{
		ID:           id,
		Index:        index,
		Name:         name,
		RelatedGames: StringSet{},
		Tracks:       make(map[string]*Track),
	}
}

// AddTrack stores t under its id, replacing any previous entry with the same id.
func (g *Game) AddTrack(t *Track) {
	g.Tracks[t.ID] = t
}

// Track looks up a track by id.
func (g *Game) Track(id string) (*Track, bool) {
	t, ok := g.Tracks[id]
	return t, ok
}

// SortedTracks returns the tracks ordered by [Track.Index].
func (g *Game) SortedTracks() []*Track {
	tracks := make([]*Track, 0, len(g.Tracks))
	for _, t := range g.Tracks {
		tracks = append(tracks, t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Index < tracks[j].Index })
	return tracks
}

// Catalog is the set of games assembled for one locale.
type Catalog struct {
	Locale string
	games  map[string]*Game
}

// NewCatalog returns an empty catalog for locale.
func NewCatalog(locale string) *Catalog {
	return &Catalog{Locale: locale, games: make(map[string]*Game)}
}

// Add stores g under its id.
func (c *Catalog) Add(g *Game) {
	c.games[g.ID] = g
}

// Game looks up a game by id.
func (c *Catalog) Game(id string) (*Game, bool) {
	g, ok := c.games[id]
	return g, ok
}

// Len returns the number of games.
func (c *Catalog) Len() int {
	return len(c.games)
}

// Games returns every game ordered by [Game.Index].
func (c *Catalog) Games() []*Game {
	games := make([]*Game, 0, len(c.games))
	for _, g := range c.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Index < games[j].Index })
	return games
}

// TrackCount returns the number of tracks across all games.
func (c *Catalog) TrackCount() int {
	n := 0
	for _, g := range c.games {
		n += len(g.Tracks)
	}
	return n
}
