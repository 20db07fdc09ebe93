package models

import (
	"errors"
	"testing"
)

func TestStringSet(t *testing.T) {
	s := NewStringSet("b", "a")
	s.Add("c")
	s.Add("a")

	if len(s) != 3 {
		t.Errorf("expected 3 members, got %d", len(s))
	}
	if !s.Has("c") || s.Has("z") {
		t.Error("unexpected membership result")
	}
	if got := s.Join("|"); got != "a|b|c" {
		t.Errorf("Join() = %q, want %q", got, "a|b|c")
	}
	if got := (StringSet{}).Join("|"); got != "" {
		t.Errorf("empty Join() = %q", got)
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog("en-US")
	c.Add(NewGame("g2", "Second", 2))
	c.Add(NewGame("g1", "First", 1))
	c.Add(NewGame("g3", "Third", 3))

	games := c.Games()
	for i, g := range games {
		if g.Index != i+1 {
			t.Errorf("game %d has index %d", i, g.Index)
		}
	}

	g, ok := c.Game("g2")
	if !ok {
		t.Fatal("expected g2 to be found")
	}
	g.AddTrack(NewTrack("t2", "B", 2))
	g.AddTrack(NewTrack("t1", "A", 1))

	if c.TrackCount() != 2 {
		t.Errorf("expected 2 tracks, got %d", c.TrackCount())
	}

	tracks := g.SortedTracks()
	if tracks[0].ID != "t1" || tracks[1].ID != "t2" {
		t.Errorf("tracks not ordered by index: %s, %s", tracks[0].ID, tracks[1].ID)
	}

	if _, ok := c.Game("missing"); ok {
		t.Error("missing game should not be found")
	}
}

func TestRun(t *testing.T) {
	t.Run("Finish success", func(t *testing.T) {
		r := NewRun("ja-JP")
		if err := r.Validate(); err != nil {
			t.Fatalf("new run should validate: %v", err)
		}
		r.Finish(nil)
		if r.Status != RunSucceeded || r.FinishedAt == nil {
			t.Errorf("unexpected run state: %+v", r)
		}
	})

	t.Run("Finish failure", func(t *testing.T) {
		r := NewRun("ja-JP")
		r.Finish(errors.New("boom"))
		if r.Status != RunFailed || r.ErrorMessage != "boom" {
			t.Errorf("unexpected run state: %+v", r)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		r := NewRun("")
		if err := r.Validate(); err == nil {
			t.Error("expected error for missing locale")
		}
		r = NewRun("en-US")
		r.Status = "weird"
		if err := r.Validate(); err == nil {
			t.Error("expected error for invalid status")
		}
	})
}
