/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playpose

import "fmt"

// Phase is the lifecycle state of a game.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlay
	PhasePose
)

func (p Phase) String() string {
	switch p {
	case PhasePlay:
		return "play"
	case PhasePose:
		return "pose"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*p = PhaseIdle
	case "play":
		*p = PhasePlay
	case "pose":
		*p = PhasePose
	default:
		return fmt.Errorf("playpose: unknown phase %q", b)
	}

	return nil
}

// next returns the phase that follows p in the play/pose cycle.
func (p Phase) next() Phase {
	if p == PhasePlay {
		return PhasePose
	}
	return PhasePlay
}

// list returns the track list that is heard during p.
func (p Phase) list() ListName {
	if p == PhasePose {
		return ListPose
	}
	return ListPlay
}

// phaseSeconds maps a length preset to the play and pose durations.
var phaseSeconds = map[int][2]int{
	1: {30, 15},
	2: {45, 20},
	3: {60, 30},
}

// PhaseLength returns the length in seconds of phase p under the given preset.
// Unknown presets fall back to the medium preset.
func PhaseLength(preset int, p Phase) int {
	lengths, ok := phaseSeconds[preset]
	if !ok {
		lengths = phaseSeconds[DefaultLengthPreset]
	}

	switch p {
	case PhasePlay:
		return lengths[0]
	case PhasePose:
		return lengths[1]
	default:
		return 0
	}
}
