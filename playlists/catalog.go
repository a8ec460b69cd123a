/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package playlists serves mood-based playlist discovery for the game by
// proxying a YouTube Music catalog.
package playlists

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Catalog is the upstream music-metadata backend.
type Catalog interface {
	MoodCategories(ctx context.Context) (MoodCategories, error)
	MoodPlaylists(ctx context.Context, params string) ([]MoodGroup, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]RawPlaylist, error)
}

// MoodItem is one browsable mood or genre.
type MoodItem struct {
	Title  string `json:"title"`
	Params string `json:"params"`
}

// MoodCategory groups mood items under a heading such as "Moods & moments".
type MoodCategory struct {
	Name  string
	Items []MoodItem
}

// MoodCategories keeps the upstream object's key order, which decides the
// fallback category.
type MoodCategories []MoodCategory

func (m *MoodCategories) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("mood categories: expected object, got %v", tok)
	}

	var out MoodCategories
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var items []MoodItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("mood category %q: %w", name, err)
		}

		out = append(out, MoodCategory{Name: name, Items: items})
	}

	*m = out
	return nil
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// RawPlaylist is a playlist as the catalog reports it.
type RawPlaylist struct {
	ResultType  string      `json:"resultType,omitempty"`
	PlaylistID  string      `json:"playlistId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Thumbnails  []Thumbnail `json:"thumbnails"`
}

// MoodGroup is a shelf of playlists on a mood page. Some shelves are a
// single playlist rather than a list of them.
type MoodGroup struct {
	Title       string        `json:"title"`
	Playlists   []RawPlaylist `json:"playlists"`
	PlaylistID  string        `json:"playlistId"`
	Description string        `json:"description"`
	Thumbnails  []Thumbnail   `json:"thumbnails"`
}

// Entries flattens the group into its playlists.
func (g MoodGroup) Entries() []RawPlaylist {
	if len(g.Playlists) == 0 && g.PlaylistID != "" {
		return []RawPlaylist{{
			PlaylistID:  g.PlaylistID,
			Title:       g.Title,
			Description: g.Description,
			Thumbnails:  g.Thumbnails,
		}}
	}
	return g.Playlists
}
