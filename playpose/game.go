/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package playpose implements the Play · Pose game: a session alternates
// timed play and pose phases, each heard over its own track list.
//
// A Game is not safe for concurrent use. It is owned by a single event loop,
// and its Scheduler delivers timer callbacks onto that same loop.
package playpose

import (
	"math/rand/v2"
	"time"
)

// CueGap is how long the game pauses between the end of one phase and the
// start of the next.
const CueGap = 1500 * time.Millisecond

type Game struct {
	sched Scheduler
	intn  func(n int) int

	phase        Phase
	paused       bool
	inTransition bool

	lengthPreset int
	showTimer    bool
	shuffle      bool

	lists  map[ListName]*TrackList
	timers timerState
}

func NewGame(sched Scheduler) *Game {
	return &Game{
		sched:        sched,
		intn:         rand.IntN,
		lengthPreset: DefaultLengthPreset,
		lists:        make(map[ListName]*TrackList),
	}
}

// ApplySettings takes the length preset and timer visibility from s.
func (g *Game) ApplySettings(s Settings) {
	g.lengthPreset = s.LengthPreset()
	g.HandleShowTimerChange(s.ShowTimer)
}

// SetLengthPreset changes phase lengths from the next phase on.
func (g *Game) SetLengthPreset(preset int) {
	g.lengthPreset = preset
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) Paused() bool {
	return g.paused
}

func (g *Game) InTransition() bool {
	return g.inTransition
}

// ActiveList is the list heard in the current phase.
func (g *Game) ActiveList() ListName {
	return g.phase.list()
}

// Toggle starts an idle game, or pauses and resumes a running one.
// It is rejected between phases.
func (g *Game) Toggle() bool {
	if g.inTransition {
		return false
	}

	switch {
	case g.phase == PhaseIdle:
		g.paused = false
		g.beginPhase(PhasePlay)
	case g.paused:
		g.resume()
	default:
		g.pause()
	}

	return true
}

// Pause halts a running game. It reports whether anything changed.
func (g *Game) Pause() bool {
	if g.phase == PhaseIdle || g.paused || g.inTransition {
		return false
	}
	g.pause()
	return true
}

// SkipCurrentSong reports whether the caller may move to the next track.
func (g *Game) SkipCurrentSong() bool {
	if g.phase == PhaseIdle || g.inTransition {
		return false
	}
	return true
}

// Stop ends the game and returns to idle.
func (g *Game) Stop() {
	g.ClearTimers()
	g.phase = PhaseIdle
	g.paused = false
	g.inTransition = false
	g.timers.remaining = 0
	g.timers.left = 0
}

func (g *Game) pause() {
	left, ok := g.timeLeft()
	if !ok {
		left = time.Duration(max(g.timers.remaining, 0)) * time.Second
	}
	g.timers.remaining = ceilSeconds(left)

	g.ClearTimers()
	g.timers.left = left
	g.paused = true

	if g.showTimer {
		g.timers.text = formatRemaining(g.timers.remaining)
	}
}

func (g *Game) resume() {
	g.paused = false
	g.armPhaseFor(g.timers.left)

	if g.showTimer && g.timers.remaining > 0 {
		g.startCountdown()
	} else {
		g.timers.text = ""
	}
}

func (g *Game) beginPhase(p Phase) {
	g.phase = p
	g.timers.remaining = PhaseLength(g.lengthPreset, p)
	g.armPhase(g.timers.remaining)

	if g.showTimer && g.timers.remaining > 0 {
		g.startCountdown()
	}
}

// endPhase closes the current phase and, after CueGap, opens the next one.
// Toggle and skip are rejected until then.
func (g *Game) endPhase() {
	g.timers.phase = nil
	if g.phase == PhaseIdle {
		return
	}

	g.inTransition = true
	g.ClearTimers()
	g.timers.remaining = 0
	g.NextTrack(g.phase.list())

	next := g.phase.next()
	g.timers.phase = g.sched.AfterFunc(CueGap, func() {
		g.timers.phase = nil
		g.inTransition = false
		g.beginPhase(next)
	})
}

// Snapshot is a copy of the game state for clients.
type Snapshot struct {
	Phase        Phase  `json:"phase"`
	Paused       bool   `json:"paused"`
	InTransition bool   `json:"in_transition"`
	Remaining    int    `json:"remaining"`
	TimerText    string `json:"timer_text"`
	Shuffle      bool   `json:"shuffle"`
	PlayTrack    *Track `json:"play_track,omitempty"`
	PoseTrack    *Track `json:"pose_track,omitempty"`
	PlayCount    int    `json:"play_count"`
	PoseCount    int    `json:"pose_count"`
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Phase:        g.phase,
		Paused:       g.paused,
		InTransition: g.inTransition,
		Remaining:    max(g.timers.remaining, 0),
		TimerText:    g.timers.text,
		Shuffle:      g.shuffle,
		PlayTrack:    g.CurrentTrack(ListPlay),
		PoseTrack:    g.CurrentTrack(ListPose),
	}

	if l := g.lists[ListPlay]; l != nil {
		s.PlayCount = len(l.Tracks)
	}
	if l := g.lists[ListPose]; l != nil {
		s.PoseCount = len(l.Tracks)
	}

	return s
}
