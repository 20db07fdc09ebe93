package services

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/nmdb/internal/shared"
	tu "github.com/desertthunder/nmdb/internal/testing"
)

func newTestCatalog(t *testing.T, api *tu.FakeAPI) *CatalogService {
	t.Helper()
	srv := api.Start(t)
	client := NewClient(ClientOpts{BaseURL: srv.URL, MaxAttempts: 2})
	return NewCatalogService(client, Selectors{
		Country:     "JP",
		Membership:  "BASIC",
		PackageType: "hls_cbcs",
		SDKVersion:  "ios-1.4.0_f362763-1",
	})
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()

	t.Run("Default Country", func(t *testing.T) {
		svc := NewCatalogService(NewClient(ClientOpts{}), Selectors{})
		if svc.selectors.Country != "JP" {
			t.Errorf("expected JP, got %s", svc.selectors.Country)
		}
	})

	t.Run("AllGames", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Handle("/catalog/games:all", []GameSummary{
			{ID: "g1", Name: "Alpha", FormalHardware: "Switch"},
			{ID: "g2", Name: "Beta", IsGameLink: true},
		})
		svc := newTestCatalog(t, api)

		games, err := svc.AllGames(ctx, "en-US")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(games) != 2 || !games[1].IsGameLink {
			t.Errorf("unexpected games: %+v", games)
		}

		q := api.LastQuery("/catalog/games:all")
		if q.Get("lang") != "en-US" || q.Get("country") != "JP" || q.Get("sortRule") != SortRuleRecent {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Has("membership") {
			t.Error("expected games:all not to carry playlist selectors")
		}
	})

	t.Run("RelatedGames", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Handle("/catalog/games/g1/relatedGames", []GameSummary{{ID: "g9", Name: "Gamma"}})
		svc := newTestCatalog(t, api)

		games, err := svc.RelatedGames(ctx, "ja-JP", "g1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(games) != 1 || games[0].Name != "Gamma" {
			t.Errorf("unexpected related games: %+v", games)
		}
	})

	t.Run("RelatedPlaylists", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Handle("/catalog/games/g1/relatedPlaylists", RelatedPlaylists{
			AllPlaylist:  PlaylistRef{ID: "all1", Name: "All"},
			BestPlaylist: &Playlist{ID: "best1", Tracks: []TrackData{{ID: "t1"}}},
			MiscPlaylistSet: MiscPlaylistSet{OfficialPlaylists: []PlaylistRef{
				{ID: "p1", Name: "Battle", Type: "NORMAL"},
				{ID: "p2", Name: "Loops", Type: PlaylistTypeLoop},
			}},
		})
		svc := newTestCatalog(t, api)

		related, err := svc.RelatedPlaylists(ctx, "en-US", "g1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if related.AllPlaylist.ID != "all1" {
			t.Errorf("expected all playlist all1, got %s", related.AllPlaylist.ID)
		}
		if related.BestPlaylist == nil || len(related.BestPlaylist.Tracks) != 1 {
			t.Errorf("expected best playlist with one track, got %+v", related.BestPlaylist)
		}
		if len(related.MiscPlaylistSet.OfficialPlaylists) != 2 {
			t.Errorf("expected 2 misc playlists")
		}

		q := api.LastQuery("/catalog/games/g1/relatedPlaylists")
		for key, want := range map[string]string{
			"country":     "JP",
			"lang":        "en-US",
			"membership":  "BASIC",
			"packageType": "hls_cbcs",
			"sdkVersion":  "ios-1.4.0_f362763-1",
		} {
			if got := q.Get(key); got != want {
				t.Errorf("expected %s=%s, got %q", key, want, got)
			}
		}
	})

	t.Run("Playlist", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Handle("/catalog/officialPlaylists/all1", Playlist{
			ID:   "all1",
			Name: "All",
			Tracks: []TrackData{{
				ID:   "t1",
				Name: "Title",
				Media: Media{PayloadList: []Payload{{
					DurationMillis:        95000,
					ContainsLoopableMedia: true,
					LoopableMedia:         &LoopableMedia{Composed: Composed{DurationMillis: 120000}},
				}}},
			}},
		})
		svc := newTestCatalog(t, api)

		playlist, err := svc.Playlist(ctx, "en-US", "all1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		payload, ok := playlist.Tracks[0].Media.Primary()
		if !ok {
			t.Fatal("expected a primary payload")
		}
		if payload.LoopableMedia == nil || payload.LoopableMedia.Composed.DurationMillis != 120000 {
			t.Errorf("unexpected payload: %+v", payload)
		}
		if q := api.LastQuery("/catalog/officialPlaylists/all1"); q.Get("packageType") != "hls_cbcs" {
			t.Errorf("expected playlist selectors, got %v", q)
		}
	})

	t.Run("GameGroups", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Handle("/catalog/gameGroups", GameGroups{ReleasedAt: []ReleaseGroup{
			{ReleasedYear: 2017, Items: []GameSummary{{ID: "g1"}}},
		}})
		svc := newTestCatalog(t, api)

		groups, err := svc.GameGroups(ctx, "en-US", GroupingReleaseDate)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(groups.ReleasedAt) != 1 || groups.ReleasedAt[0].ReleasedYear != 2017 {
			t.Errorf("unexpected groups: %+v", groups)
		}
		if q := api.LastQuery("/catalog/gameGroups"); q.Get("groupingPolicy") != GroupingReleaseDate {
			t.Errorf("expected grouping policy, got %v", q)
		}
	})

	t.Run("Updates", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Handle("/catalog/resources:detectUpdates", UpdateReport{UpdatedTracks: []TrackUpdate{{ID: "t1", UpdatedAt: 1700000000}}})
		api.Handle("/catalog/tracks/t1", TrackData{ID: "t1", Name: "Title"})
		svc := newTestCatalog(t, api)

		report, err := svc.DetectUpdates(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(report.UpdatedTracks) != 1 {
			t.Fatalf("expected 1 update, got %d", len(report.UpdatedTracks))
		}
		if q := api.LastQuery("/catalog/resources:detectUpdates"); len(q) != 0 {
			t.Errorf("expected no query parameters, got %v", q)
		}

		track, err := svc.Track(ctx, "zh-CN", "t1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track.Name != "Title" {
			t.Errorf("expected Title, got %s", track.Name)
		}
	})

	t.Run("Errors Propagate", func(t *testing.T) {
		api := tu.NewFakeAPI()
		svc := newTestCatalog(t, api)

		if _, err := svc.Playlist(ctx, "en-US", "nope"); !errors.Is(err, shared.ErrRetriesExhausted) {
			t.Errorf("expected ErrRetriesExhausted, got %v", err)
		}
	})

	t.Run("HomeSections", func(t *testing.T) {
		t.Run("Requires Credentials", func(t *testing.T) {
			svc := NewCatalogService(NewClient(ClientOpts{}), Selectors{})
			_, _, err := svc.HomeSections(ctx, "zh-CN", "", "token")
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Sends Bearer Token", func(t *testing.T) {
			api := tu.NewFakeAPI()
			api.Handle("/catalog/users/u1/sections/home", SectionsDocument{
				CommonSections: []Section{{Name: "Listen", Playlists: []PlaylistRef{{ID: "p1"}}}},
			})
			svc := newTestCatalog(t, api)

			doc, raw, err := svc.HomeSections(ctx, "zh-CN", "u1", "tok")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(doc.CommonSections) != 1 || len(raw) == 0 {
				t.Errorf("unexpected document: %+v", doc)
			}
			if got := api.LastHeader("/catalog/users/u1/sections/home").Get("Authorization"); got != "Bearer tok" {
				t.Errorf("expected bearer token, got %q", got)
			}
		})
	})
}
