package services

// GameSummary is a game as listed by games:all, relatedGames and gameGroups.
type GameSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	FormalHardware string `json:"formalHardware"`
	IsGameLink     bool   `json:"isGameLink"`
	ThumbnailURL   string `json:"thumbnailURL,omitempty"`
}

// GameRef is the owning game embedded in a track.
type GameRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PlaylistRef points at a playlist without its contents.
type PlaylistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Composed is the stitched intro+loop rendition of a loopable track.
type Composed struct {
	DurationMillis int `json:"durationMillis"`
}

// LoopableMedia describes the seamlessly looping variant of a payload.
type LoopableMedia struct {
	Composed Composed `json:"composed"`
}

// Payload is one playable rendition of a track.
type Payload struct {
	DurationMillis        int            `json:"durationMillis"`
	ContainsLoopableMedia bool           `json:"containsLoopableMedia"`
	LoopableMedia         *LoopableMedia `json:"loopableMedia,omitempty"`
}

// Media lists the renditions of a track; the first payload is canonical.
type Media struct {
	PayloadList []Payload `json:"payloadList"`
}

// Primary returns the canonical payload, if any.
func (m Media) Primary() (Payload, bool) {
	if len(m.PayloadList) == 0 {
		return Payload{}, false
	}
	return m.PayloadList[0], true
}

// TrackData is a track as embedded in playlist responses and returned by tracks/{id}.
type TrackData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ThumbnailURL string  `json:"thumbnailURL,omitempty"`
	Game         GameRef `json:"game"`
	Media        Media   `json:"media"`
}

// Playlist is an official playlist with its tracks in canonical order.
type Playlist struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   string      `json:"type,omitempty"`
	Tracks []TrackData `json:"tracks"`
}

// MiscPlaylistSet groups a game's additional playlists.
type MiscPlaylistSet struct {
	OfficialPlaylists []PlaylistRef `json:"officialPlaylists"`
}

// RelatedPlaylists is the playlist descriptor of a game.
type RelatedPlaylists struct {
	AllPlaylist     PlaylistRef     `json:"allPlaylist"`
	BestPlaylist    *Playlist       `json:"bestPlaylist,omitempty"`
	MiscPlaylistSet MiscPlaylistSet `json:"miscPlaylistSet"`
}

// ReleaseGroup is the set of games released in one year.
type ReleaseGroup struct {
	ReleasedYear int           `json:"releasedYear"`
	Items        []GameSummary `json:"items"`
}

// GameGroups is the gameGroups response for the RELEASEDAT policy.
type GameGroups struct {
	ReleasedAt []ReleaseGroup `json:"releasedAt"`
}

// TrackUpdate is a single entry of the detectUpdates feed.
type TrackUpdate struct {
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updatedAt"` // unix seconds
}

// UpdateReport is the detectUpdates response.
type UpdateReport struct {
	UpdatedTracks []TrackUpdate `json:"updatedTracks"`
}

// Section is a named group of curated playlists.
type Section struct {
	Name      string        `json:"name"`
	Playlists []PlaylistRef `json:"playlists"`
}

// SectionsDocument is the curated home sections document used for cross-game enrichment.
type SectionsDocument struct {
	MiscSections   []Section `json:"miscSections"`
	CommonSections []Section `json:"commonSections"`
}

// Playlist type and grouping policy values used by the exporter.
const (
	PlaylistTypeLoop    = "LOOP"
	GroupingReleaseDate = "RELEASEDAT"
	SortRuleRecent      = "RECENT"
)
