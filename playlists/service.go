/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playlists

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
	DefaultMood  = "party"
)

var ErrUnavailable = errors.New("playlist backend not available")

// moodAliases maps the game's mood buttons to catalog titles.
var moodAliases = map[string]string{
	"workout":  "Workout",
	"energize": "Energize",
	"party":    "Party",
	"chill":    "Chill",
	"focus":    "Focus",
	"romance":  "Romance",
	"sad":      "Sad",
	"sleep":    "Sleep",
	"kids":     "Kids",
	"commute":  "Commute",
}

// Playlist is the shape handed to the browser.
type Playlist struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
	URL         string  `json:"url"`
}

type Mood struct {
	Title  string `json:"title"`
	Params string `json:"params"`
}

// Service turns catalog data into playlists the game can load.
type Service struct {
	catalog Catalog

	// Logf receives lookup diagnostics. May be nil.
	Logf func(format string, args ...any)
}

// NewService returns a Service over c. A nil catalog makes every call fail
// with ErrUnavailable.
func NewService(c Catalog) *Service {
	return &Service{catalog: c}
}

func (s *Service) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// Moods lists every browsable mood across all categories.
func (s *Service) Moods(ctx context.Context) ([]Mood, error) {
	if s.catalog == nil {
		return nil, ErrUnavailable
	}

	categories, err := s.catalog.MoodCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("playlists: moods: %w", err)
	}

	moods := []Mood{}
	for _, c := range categories {
		for _, item := range c.Items {
			moods = append(moods, Mood(item))
		}
	}

	return moods, nil
}

// Browse returns up to limit playlists for a mood. When no category matches,
// the first item of the first category is used instead.
func (s *Service) Browse(ctx context.Context, mood string, limit int) ([]Playlist, error) {
	if s.catalog == nil {
		return nil, ErrUnavailable
	}

	categories, err := s.catalog.MoodCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("playlists: browse %q: %w", mood, err)
	}

	target := strings.ToLower(mood)
	if alias, ok := moodAliases[target]; ok {
		target = strings.ToLower(alias)
	}

	s.logf("API: Searching for mood: %s", target)

	params, matched := matchMood(categories, target)
	if !matched {
		s.logf("API: No match for mood %q, using fallback", target)
	}

	playlists := []Playlist{}
	if params == "" {
		return playlists, nil
	}

	groups, err := s.catalog.MoodPlaylists(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("playlists: browse %q: %w", mood, err)
	}

	for _, g := range groups {
		for _, raw := range g.Entries() {
			if len(playlists) >= limit {
				return playlists, nil
			}
			if p, ok := toPlaylist(raw); ok {
				playlists = append(playlists, p)
			}
		}
	}

	s.logf("API: Returning %d playlists", len(playlists))

	return playlists, nil
}

// matchMood finds the first item whose title contains target or is
// contained in it. It reports whether the params came from a real match.
func matchMood(categories MoodCategories, target string) (string, bool) {
	for _, c := range categories {
		for _, item := range c.Items {
			title := strings.ToLower(item.Title)
			if strings.Contains(title, target) || strings.Contains(target, title) {
				return item.Params, true
			}
		}
	}

	if len(categories) > 0 && len(categories[0].Items) > 0 {
		return categories[0].Items[0].Params, false
	}

	return "", false
}

// Search returns up to limit playlists matching a free-text query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Playlist, error) {
	if s.catalog == nil {
		return nil, ErrUnavailable
	}

	results, err := s.catalog.SearchPlaylists(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("playlists: search %q: %w", query, err)
	}

	playlists := []Playlist{}
	for _, raw := range results {
		if len(playlists) >= limit {
			break
		}
		if raw.ResultType != "playlist" {
			continue
		}
		if p, ok := toPlaylist(raw); ok {
			playlists = append(playlists, p)
		}
	}

	return playlists, nil
}

// ValidID reports whether id is usable as a playlist id.
func ValidID(id string) bool {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "", "null", "none", "undefined":
		return false
	}
	return true
}

func toPlaylist(raw RawPlaylist) (Playlist, bool) {
	if !ValidID(raw.PlaylistID) {
		return Playlist{}, false
	}

	title := raw.Title
	if title == "" {
		title = "Unknown"
	}

	return Playlist{
		ID:          raw.PlaylistID,
		Title:       title,
		Description: raw.Description,
		Thumbnail:   bestThumbnail(raw.Thumbnails),
		URL:         "https://www.youtube.com/playlist?list=" + raw.PlaylistID,
	}, true
}

// bestThumbnail picks the last, largest thumbnail.
func bestThumbnail(thumbs []Thumbnail) *string {
	if len(thumbs) == 0 {
		return nil
	}
	u := thumbs[len(thumbs)-1].URL
	return &u
}
