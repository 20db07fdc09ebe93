package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/nmdb/internal/shared"
)

// Catalog is the read surface of the catalog API the aggregator depends on.
type Catalog interface {
	// AllGames lists every game, newest first.
	AllGames(ctx context.Context, lang string) ([]GameSummary, error)

	// RelatedGames lists the titles related to a game.
	RelatedGames(ctx context.Context, lang, gameID string) ([]GameSummary, error)

	// RelatedPlaylists returns the all/best/misc playlist descriptor of a game.
	RelatedPlaylists(ctx context.Context, lang, gameID string) (*RelatedPlaylists, error)

	// Playlist returns an official playlist with its tracks.
	Playlist(ctx context.Context, lang, playlistID string) (*Playlist, error)

	// GameGroups returns games grouped under policy (e.g. [GroupingReleaseDate]).
	GameGroups(ctx context.Context, lang, policy string) (*GameGroups, error)
}

// UpdateFeed is the surface used to report recently updated tracks.
type UpdateFeed interface {
	DetectUpdates(ctx context.Context) (*UpdateReport, error)
	Track(ctx context.Context, lang, trackID string) (*TrackData, error)
}

// Selectors are the fixed query parameters the service requires alongside lang.
type Selectors struct {
	Country     string
	Membership  string
	PackageType string
	SDKVersion  string
}

// CatalogService implements [Catalog] and [UpdateFeed] over a [Client].
type CatalogService struct {
	client    *Client
	selectors Selectors
}

// NewCatalogService creates a catalog service. An empty country defaults to "JP".
func NewCatalogService(client *Client, selectors Selectors) *CatalogService {
	if selectors.Country == "" {
		selectors.Country = "JP"
	}
	return &CatalogService{client: client, selectors: selectors}
}

func (s *CatalogService) params(lang string) url.Values {
	v := url.Values{}
	v.Set("country", s.selectors.Country)
	v.Set("lang", lang)
	return v
}

func (s *CatalogService) playlistParams(lang string) url.Values {
	v := s.params(lang)
	if s.selectors.Membership != "" {
		v.Set("membership", s.selectors.Membership)
	}
	if s.selectors.PackageType != "" {
		v.Set("packageType", s.selectors.PackageType)
	}
	if s.selectors.SDKVersion != "" {
		v.Set("sdkVersion", s.selectors.SDKVersion)
	}
	return v
}

// AllGames calls GET /catalog/games:all sorted by recency.
func (s *CatalogService) AllGames(ctx context.Context, lang string) ([]GameSummary, error) {
	params := s.params(lang)
	params.Set("sortRule", SortRuleRecent)

	var games []GameSummary
	if err := s.client.Get(ctx, "/catalog/games:all", params, &games); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// RelatedGames calls GET /catalog/games/{id}/relatedGames.
func (s *CatalogService) RelatedGames(ctx context.Context, lang, gameID string) ([]GameSummary, error) {
	var games []GameSummary
	path := fmt.Sprintf("/catalog/games/%s/relatedGames", url.PathEscape(gameID))
	if err := s.client.Get(ctx, path, s.params(lang), &games); err != nil {
		return nil, fmt.Errorf("failed to get related games of %s: %w", gameID, err)
	}
	return games, nil
}

// RelatedPlaylists calls GET /catalog/games/{id}/relatedPlaylists.
func (s *CatalogService) RelatedPlaylists(ctx context.Context, lang, gameID string) (*RelatedPlaylists, error) {
	var related RelatedPlaylists
	path := fmt.Sprintf("/catalog/games/%s/relatedPlaylists", url.PathEscape(gameID))
	if err := s.client.Get(ctx, path, s.playlistParams(lang), &related); err != nil {
		return nil, fmt.Errorf("failed to get related playlists of %s: %w", gameID, err)
	}
	return &related, nil
}

// Playlist calls GET /catalog/officialPlaylists/{id}.
func (s *CatalogService) Playlist(ctx context.Context, lang, playlistID string) (*Playlist, error) {
	var playlist Playlist
	path := fmt.Sprintf("/catalog/officialPlaylists/%s", url.PathEscape(playlistID))
	if err := s.client.Get(ctx, path, s.playlistParams(lang), &playlist); err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}
	return &playlist, nil
}

// GameGroups calls GET /catalog/gameGroups with the given grouping policy.
func (s *CatalogService) GameGroups(ctx context.Context, lang, policy string) (*GameGroups, error) {
	params := s.params(lang)
	params.Set("groupingPolicy", policy)

	var groups GameGroups
	if err := s.client.Get(ctx, "/catalog/gameGroups", params, &groups); err != nil {
		return nil, fmt.Errorf("failed to get game groups (%s): %w", policy, err)
	}
	return &groups, nil
}

// Track calls GET /catalog/tracks/{id}.
func (s *CatalogService) Track(ctx context.Context, lang, trackID string) (*TrackData, error) {
	var track TrackData
	path := fmt.Sprintf("/catalog/tracks/%s", url.PathEscape(trackID))
	if err := s.client.Get(ctx, path, s.params(lang), &track); err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", trackID, err)
	}
	return &track, nil
}

// DetectUpdates calls GET /catalog/resources:detectUpdates.
func (s *CatalogService) DetectUpdates(ctx context.Context) (*UpdateReport, error) {
	var report UpdateReport
	if err := s.client.Get(ctx, "/catalog/resources:detectUpdates", nil, &report); err != nil {
		return nil, fmt.Errorf("failed to detect updates: %w", err)
	}
	return &report, nil
}

// HomeSections calls GET /catalog/users/{id}/sections/home with a bearer token and returns
// the decoded document along with the raw body.
func (s *CatalogService) HomeSections(ctx context.Context, lang, userID, token string) (*SectionsDocument, []byte, error) {
	if userID == "" || token == "" {
		return nil, nil, fmt.Errorf("%w: user id and token are required for home sections", shared.ErrMissingCredentials)
	}

	var doc SectionsDocument
	path := fmt.Sprintf("/catalog/users/%s/sections/home", url.PathEscape(userID))
	params := url.Values{}
	params.Set("lang", lang)

	body, err := s.client.WithToken(token).GetRaw(ctx, path, params, &doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get home sections: %w", err)
	}
	return &doc, body, nil
}
