package playlists

import (
	"context"
	"errors"
	"testing"
)

type mockCatalog struct {
	categories MoodCategories
	groups     map[string][]MoodGroup
	results    []RawPlaylist
	err        error

	browsedParams string
	searchLimit   int
}

func (m *mockCatalog) MoodCategories(ctx context.Context) (MoodCategories, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *mockCatalog) MoodPlaylists(ctx context.Context, params string) ([]MoodGroup, error) {
	m.browsedParams = params
	if m.err != nil {
		return nil, m.err
	}
	return m.groups[params], nil
}

func (m *mockCatalog) SearchPlaylists(ctx context.Context, query string, limit int) ([]RawPlaylist, error) {
	m.searchLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func testCatalog() *mockCatalog {
	return &mockCatalog{
		categories: MoodCategories{
			{Name: "Genres", Items: []MoodItem{{Title: "Pop", Params: "pop"}, {Title: "Dance & electronic", Params: "dance"}}},
			{Name: "Moods & moments", Items: []MoodItem{{Title: "Party", Params: "party"}, {Title: "Chill", Params: "chill"}}},
		},
		groups: map[string][]MoodGroup{
			"party": {
				{Title: "Featured", Playlists: []RawPlaylist{
					{PlaylistID: "PL1", Title: "Party Hits", Thumbnails: []Thumbnail{{URL: "small"}, {URL: "large"}}},
					{PlaylistID: "None", Title: "Broken"},
					{PlaylistID: "", Title: "Empty"},
					{PlaylistID: "PL2"},
				}},
				{Title: "Standalone", PlaylistID: "PL3", Description: "one shelf"},
			},
			"pop": {
				{Title: "Pop", Playlists: []RawPlaylist{{PlaylistID: "POP1", Title: "Pop Now"}}},
			},
		},
	}
}

func TestService_Browse(t *testing.T) {
	cat := testCatalog()
	svc := NewService(cat)

	got, err := svc.Browse(context.Background(), "PARTY", 10)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}

	if cat.browsedParams != "party" {
		t.Errorf("expected party params, got %q", cat.browsedParams)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 valid playlists, got %d: %+v", len(got), got)
	}

	first := got[0]
	if first.ID != "PL1" || first.URL != "https://www.youtube.com/playlist?list=PL1" {
		t.Errorf("unexpected first playlist %+v", first)
	}
	if first.Thumbnail == nil || *first.Thumbnail != "large" {
		t.Errorf("expected last thumbnail, got %v", first.Thumbnail)
	}
	if got[1].Title != "Unknown" || got[1].Thumbnail != nil {
		t.Errorf("expected defaults for bare playlist, got %+v", got[1])
	}
	if got[2].ID != "PL3" || got[2].Description != "one shelf" {
		t.Errorf("expected standalone shelf as playlist, got %+v", got[2])
	}
}

func TestService_BrowseLimit(t *testing.T) {
	svc := NewService(testCatalog())

	got, err := svc.Browse(context.Background(), "party", 1)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 playlist, got %d", len(got))
	}
}

func TestService_BrowseFallsBackToFirstCategory(t *testing.T) {
	cat := testCatalog()
	svc := NewService(cat)

	got, err := svc.Browse(context.Background(), "polka", 10)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}

	if cat.browsedParams != "pop" {
		t.Errorf("expected fallback to first item of first category, got %q", cat.browsedParams)
	}
	if len(got) != 1 || got[0].ID != "POP1" {
		t.Errorf("unexpected playlists %+v", got)
	}
}

func TestService_BrowseNoCategories(t *testing.T) {
	svc := NewService(&mockCatalog{})

	got, err := svc.Browse(context.Background(), "party", 10)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
}

func TestService_Search(t *testing.T) {
	cat := &mockCatalog{
		results: []RawPlaylist{
			{ResultType: "playlist", PlaylistID: "S1", Title: "Yoga Flow"},
			{ResultType: "song", PlaylistID: "S2", Title: "Not a playlist"},
			{ResultType: "playlist", PlaylistID: "undefined", Title: "Bad id"},
			{ResultType: "playlist", PlaylistID: "NULL", Title: "Bad id"},
			{ResultType: "playlist", PlaylistID: "S3", Title: "Stretch"},
		},
	}
	svc := NewService(cat)

	got, err := svc.Search(context.Background(), "yoga", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if cat.searchLimit != 5 {
		t.Errorf("expected limit 5 forwarded, got %d", cat.searchLimit)
	}
	if len(got) != 2 || got[0].ID != "S1" || got[1].ID != "S3" {
		t.Errorf("unexpected playlists %+v", got)
	}
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()

	unavailable := NewService(nil)
	if _, err := unavailable.Moods(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := unavailable.Browse(ctx, "party", 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := unavailable.Search(ctx, "x", 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	boom := errors.New("upstream down")
	failing := NewService(&mockCatalog{err: boom})
	if _, err := failing.Browse(ctx, "party", 10); !errors.Is(err, boom) {
		t.Errorf("expected wrapped upstream error, got %v", err)
	}
}

func TestService_Moods(t *testing.T) {
	svc := NewService(testCatalog())

	got, err := svc.Moods(context.Background())
	if err != nil {
		t.Fatalf("moods: %v", err)
	}

	want := []string{"Pop", "Dance & electronic", "Party", "Chill"}
	if len(got) != len(want) {
		t.Fatalf("expected %d moods, got %d", len(want), len(got))
	}
	for i, m := range got {
		if m.Title != want[i] {
			t.Errorf("mood %d: expected %q, got %q", i, want[i], m.Title)
		}
	}
}

func TestValidID(t *testing.T) {
	tests := map[string]bool{
		"PLabc":     true,
		"":          false,
		"null":      false,
		"None":      false,
		"undefined": false,
		"UNDEFINED": false,
		"nullish":   true,
	}

	for id, want := range tests {
		if got := ValidID(id); got != want {
			t.Errorf("ValidID(%q) = %v, want %v", id, got, want)
		}
	}
}
