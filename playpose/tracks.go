/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playpose

import "fmt"

// ListName names one of the two track lists.
type ListName string

const (
	ListPlay ListName = "play"
	ListPose ListName = "pose"
)

// ParseListName validates a list name received from a client.
func ParseListName(s string) (ListName, error) {
	switch ListName(s) {
	case ListPlay, ListPose:
		return ListName(s), nil
	}
	return "", fmt.Errorf("playpose: unknown track list %q", s)
}

// TrackKind is where a track's media comes from.
type TrackKind string

const (
	KindLocal   TrackKind = "local"
	KindYouTube TrackKind = "youtube"
)

// Track is an opaque descriptor; the browser owns the media itself.
type Track struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind TrackKind `json:"kind"`
}

// TrackList is an ordered list of tracks with a wrapping cursor.
type TrackList struct {
	Name   ListName
	Tracks []Track
	Index  int
}

// Current returns the track under the cursor, or nil if the list is empty.
func (l *TrackList) Current() *Track {
	if l == nil || len(l.Tracks) == 0 {
		return nil
	}
	t := l.Tracks[l.Index]
	return &t
}

// LoadTracks replaces the named list and rewinds its cursor.
func (g *Game) LoadTracks(name ListName, tracks []Track) {
	list := &TrackList{
		Name:   name,
		Tracks: append([]Track(nil), tracks...),
	}
	g.lists[name] = list

	if g.shuffle {
		g.ShuffleList(name)
	}
}

// SetShuffle controls whether lists are reshuffled each time they wrap.
func (g *Game) SetShuffle(enabled bool) {
	g.shuffle = enabled
}

// NextTrack advances the named list by one, wrapping to the start.
// The list is reshuffled right after wrapping when shuffle is enabled, so the
// next pass is in fresh order without touching the track that just finished.
func (g *Game) NextTrack(name ListName) {
	list := g.lists[name]
	if list == nil || len(list.Tracks) == 0 {
		return
	}

	list.Index = (list.Index + 1) % len(list.Tracks)

	if list.Index == 0 && g.shuffle {
		g.ShuffleList(name)
	}
}

// ShuffleList permutes the named list in place with a Fisher-Yates shuffle.
func (g *Game) ShuffleList(name ListName) {
	list := g.lists[name]
	if list == nil || len(list.Tracks) < 2 {
		return
	}

	for i := len(list.Tracks) - 1; i > 0; i-- {
		j := g.intn(i + 1)
		list.Tracks[i], list.Tracks[j] = list.Tracks[j], list.Tracks[i]
	}
}

// CurrentTrack returns the track under the named list's cursor.
func (g *Game) CurrentTrack(name ListName) *Track {
	return g.lists[name].Current()
}

// TrackIndex returns the cursor of the named list, or 0 if it is absent.
func (g *Game) TrackIndex(name ListName) int {
	if list := g.lists[name]; list != nil {
		return list.Index
	}
	return 0
}
