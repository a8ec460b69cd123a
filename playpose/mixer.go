/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playpose

import "fmt"

// Role identifies one of the two external players.
type Role int

const (
	RolePlay Role = iota
	RolePose
)

func (r Role) String() string {
	if r == RolePose {
		return "pose"
	}
	return "play"
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "play":
		return RolePlay, nil
	case "pose":
		return RolePose, nil
	}
	return 0, fmt.Errorf("playpose: unknown player role %q", s)
}

// Player is an external video player which becomes ready asynchronously.
type Player interface {
	SetVolume(level int) error
}

// LocalMedia is a local audio element taking a volume in [0,1].
type LocalMedia interface {
	SetVolume(level float64)
}

type playerSlot struct {
	player Player
	ready  bool
}

// Mixer applies one volume setting across local media and both players,
// buffering it for players that are not ready yet.
type Mixer struct {
	pending *int
	local   []LocalMedia
	play    playerSlot
	pose    playerSlot

	// Logf receives swallowed player errors. May be nil.
	Logf func(format string, args ...any)
}

func NewMixer() *Mixer {
	return &Mixer{}
}

func (m *Mixer) slot(r Role) *playerSlot {
	if r == RolePose {
		return &m.pose
	}
	return &m.play
}

// SetPlayer installs p for role r. A new player is not ready until MarkReady.
func (m *Mixer) SetPlayer(r Role, p Player) {
	*m.slot(r) = playerSlot{player: p}
}

func (m *Mixer) Player(r Role) Player {
	return m.slot(r).player
}

func (m *Mixer) Ready(r Role) bool {
	return m.slot(r).ready
}

func (m *Mixer) AddLocal(l LocalMedia) {
	m.local = append(m.local, l)
}

// PendingVolume returns the last volume set, if any.
func (m *Mixer) PendingVolume() (int, bool) {
	if m.pending == nil {
		return 0, false
	}
	return *m.pending, true
}

// SetVolume records v as pending, applies it to local media and to every
// ready player. Player failures are ignored.
func (m *Mixer) SetVolume(v int) {
	v = clampVolume(v)
	m.pending = &v

	for _, l := range m.local {
		_ = Try(func() error {
			l.SetVolume(float64(v) / 100)
			return nil
		})
	}

	for _, r := range []Role{RolePlay, RolePose} {
		s := m.slot(r)
		if s.player != nil && s.ready {
			m.apply(r, s.player, v)
		}
	}
}

// ApplyPendingVolume forwards the pending volume to role r's player.
func (m *Mixer) ApplyPendingVolume(r Role) {
	p := m.slot(r).player
	if m.pending == nil || p == nil {
		return
	}
	m.apply(r, p, *m.pending)
}

// MarkReady records that role r's player signalled readiness.
func (m *Mixer) MarkReady(r Role) {
	s := m.slot(r)
	if s.player == nil {
		return
	}
	s.ready = true
	m.ApplyPendingVolume(r)
}

func (m *Mixer) apply(r Role, p Player, v int) {
	err := Try(func() error {
		return p.SetVolume(v)
	})
	if err != nil && m.Logf != nil {
		m.Logf("%s player volume: %v", r, err)
	}
}

func clampVolume(v int) int {
	return max(0, min(100, v))
}
