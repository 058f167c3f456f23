package clip

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "clips.json"), zerolog.Nop())
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clips.json")

	s := NewStore(path, zerolog.Nop())
	s.Add("greeting", "hello there")
	macro := s.AddMacro("select all", []Step{
		TextStep("find me"),
		ActionStep([]string{"ctrl", "a"}, "Ctrl + A"),
	})

	reopened := NewStore(path, zerolog.Nop())
	clips := reopened.All()
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips after reload, got %d", len(clips))
	}

	got, ok := reopened.Get(macro.ID)
	if !ok {
		t.Fatal("macro clip missing after reload")
	}
	if !got.IsMacro || len(got.Steps) != 2 {
		t.Fatalf("macro steps lost in round trip: %+v", got)
	}
	if got.Steps[1].Kind != KindAction || got.Steps[1].Label != "Ctrl + A" {
		t.Errorf("action step mangled: %+v", got.Steps[1])
	}
	if got.Text != "find me" {
		t.Errorf("text cache = %q, want %q", got.Text, "find me")
	}
}

func TestStoreMissingFileStartsEmpty(t *testing.T) {
	s := testStore(t)
	if len(s.All()) != 0 {
		t.Error("fresh store should be empty")
	}
}

func TestAddAssignsDistinctIDs(t *testing.T) {
	s := testStore(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		c := s.Add("note", "body")
		if c.ID == "" {
			t.Fatal("clip created without an id")
		}
		if seen[c.ID] {
			t.Fatalf("duplicate id %q", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestStoreNewestFirst(t *testing.T) {
	s := testStore(t)
	s.Add("first", "a")
	s.Add("second", "b")

	clips := s.All()
	if clips[0].Title != "second" {
		t.Errorf("newest clip should come first, got %q", clips[0].Title)
	}
}

func TestStoreColorsCycle(t *testing.T) {
	s := testStore(t)
	for i := 0; i < len(Colors)+1; i++ {
		s.Add("c", "t")
	}
	clips := s.All()
	first := clips[len(clips)-1]
	wrapped := clips[0]
	if first.Color != Colors[0] {
		t.Errorf("first clip color = %q, want %q", first.Color, Colors[0])
	}
	if wrapped.Color != Colors[0] {
		t.Errorf("palette should wrap around, got %q", wrapped.Color)
	}
}

func TestUpdateStepsRefreshesTextCache(t *testing.T) {
	s := testStore(t)
	c := s.AddMacro("m", []Step{TextStep("old")})

	updated, err := s.UpdateSteps(c.ID, "m", []Step{
		ActionStep([]string{"enter"}, "Enter"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Text != "[Enter]" {
		t.Errorf("text cache = %q, want rendered steps", updated.Text)
	}

	empty, err := s.UpdateSteps(c.ID, "m", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty.Steps) != 1 || empty.Steps[0].Kind != KindText {
		t.Errorf("empty macro should collapse to one empty text step, got %+v", empty.Steps)
	}
	if empty.Text == "" {
		t.Error("empty macro should get a placeholder text cache")
	}
}

func TestStoreSearch(t *testing.T) {
	s := testStore(t)
	s.Add("email signature", "Best regards,\nAli")
	s.Add("address", "42 Elm Street")

	if got := s.Search("regards"); len(got) != 1 || got[0].Title != "email signature" {
		t.Errorf("search by text failed: %+v", got)
	}
	if got := s.Search("ADDRESS"); len(got) != 1 {
		t.Error("search should be case-insensitive")
	}
	if got := s.Search(""); len(got) != 2 {
		t.Error("empty query should return everything")
	}
}

func TestStoreDelete(t *testing.T) {
	s := testStore(t)
	c := s.Add("doomed", "x")

	if !s.Delete(c.ID) {
		t.Fatal("delete should report success")
	}
	if s.Delete(c.ID) {
		t.Error("second delete should report failure")
	}
	if _, ok := s.Get(c.ID); ok {
		t.Error("clip still present after delete")
	}
}
