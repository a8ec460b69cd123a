package playpose

import (
	"testing"
	"time"
)

func newTestGame() (*Game, *manualScheduler) {
	sched := newManualScheduler()
	return NewGame(sched), sched
}

func TestHandleShowTimerChange_IdleIsNoop(t *testing.T) {
	for _, on := range []bool{true, false} {
		g, sched := newTestGame()
		g.timers.remaining = 15

		g.HandleShowTimerChange(on)

		if g.CountdownActive() {
			t.Errorf("on=%v: expected no countdown while idle", on)
		}
		if sched.live() != 0 {
			t.Errorf("on=%v: expected no timers while idle, got %d", on, sched.live())
		}
		if g.TimerText() != "" {
			t.Errorf("on=%v: expected empty text, got %q", on, g.TimerText())
		}
	}
}

func TestHandleShowTimerChange_OnThenOff(t *testing.T) {
	g, sched := newTestGame()
	g.phase = PhasePlay
	g.timers.remaining = 15

	g.HandleShowTimerChange(true)

	if g.TimerText() != "15s" {
		t.Errorf("expected \"15s\", got %q", g.TimerText())
	}
	if !g.CountdownActive() {
		t.Fatal("expected a live countdown")
	}

	sched.Advance(3 * time.Second)
	if g.TimerText() != "12s" {
		t.Errorf("expected \"12s\" after 3s, got %q", g.TimerText())
	}

	g.HandleShowTimerChange(false)

	if g.CountdownActive() {
		t.Error("expected countdown handle cleared")
	}
	if g.TimerText() != "" {
		t.Errorf("expected empty text, got %q", g.TimerText())
	}
	if sched.live() != 0 {
		t.Errorf("expected no live timers, got %d", sched.live())
	}
}

func TestHandleShowTimerChange_OnTwiceKeepsOneCountdown(t *testing.T) {
	g, sched := newTestGame()
	g.phase = PhasePose
	g.timers.remaining = 10

	g.HandleShowTimerChange(true)
	g.HandleShowTimerChange(true)

	if sched.live() != 1 {
		t.Errorf("expected one live countdown, got %d", sched.live())
	}

	sched.Advance(time.Second)
	if g.Remaining() != 9 {
		t.Errorf("expected remaining 9, got %d", g.Remaining())
	}
}

func TestHandleShowTimerChange_NothingLeft(t *testing.T) {
	g, _ := newTestGame()
	g.phase = PhasePlay
	g.timers.remaining = 0

	g.HandleShowTimerChange(true)

	if g.CountdownActive() {
		t.Error("expected no countdown with nothing remaining")
	}
}

func TestCountdown_DisplayClampsAtZero(t *testing.T) {
	g, sched := newTestGame()
	g.phase = PhasePlay
	g.timers.remaining = 1

	g.HandleShowTimerChange(true)
	sched.Advance(2000 * time.Millisecond)

	if g.TimerText() != "0s" {
		t.Errorf("expected \"0s\", got %q", g.TimerText())
	}
	if g.Remaining() != -1 {
		t.Errorf("expected internal counter -1, got %d", g.Remaining())
	}
}

func TestClearTimers_Idempotent(t *testing.T) {
	g, sched := newTestGame()
	g.timers.text = "stale"

	g.ClearTimers()
	g.ClearTimers()

	if g.CountdownActive() || g.PhaseTimerActive() {
		t.Error("expected both handles nil")
	}
	if g.TimerText() != "" {
		t.Errorf("expected empty text, got %q", g.TimerText())
	}

	g.phase = PhasePlay
	g.timers.remaining = 5
	g.armPhase(5)
	g.HandleShowTimerChange(true)

	g.ClearTimers()

	if g.CountdownActive() || g.PhaseTimerActive() {
		t.Error("expected both handles nil after clearing running timers")
	}
	if sched.live() != 0 {
		t.Errorf("expected no live timers, got %d", sched.live())
	}
	if g.TimerText() != "" {
		t.Errorf("expected empty text, got %q", g.TimerText())
	}
}

func TestHandleShowTimerChange_ResyncsFromDeadline(t *testing.T) {
	g, sched := newTestGame()
	g.Toggle()

	sched.Advance(10 * time.Second)
	if g.Remaining() != 45 {
		t.Fatalf("expected hidden counter untouched at 45, got %d", g.Remaining())
	}

	g.HandleShowTimerChange(true)

	if g.TimerText() != "35s" {
		t.Errorf("expected \"35s\", got %q", g.TimerText())
	}
}

func TestCountdown_AlignsWithDeadline(t *testing.T) {
	g, sched := newTestGame()
	g.Toggle()

	sched.Advance(10400 * time.Millisecond)
	g.HandleShowTimerChange(true)

	if g.TimerText() != "35s" {
		t.Fatalf("expected \"35s\", got %q", g.TimerText())
	}

	sched.Advance(600 * time.Millisecond)
	if g.TimerText() != "34s" {
		t.Errorf("expected first tick on the deadline's whole second, got %q", g.TimerText())
	}

	sched.Advance(33 * time.Second)
	if g.TimerText() != "1s" {
		t.Errorf("expected \"1s\" one second before the end, got %q", g.TimerText())
	}

	sched.Advance(time.Second)
	if !g.InTransition() {
		t.Error("expected phase to end as the display reaches zero")
	}
}

func TestCountdown_ResumeAlignsWithDeadline(t *testing.T) {
	g, sched := newTestGame()
	g.HandleShowTimerChange(true)
	g.Toggle()

	sched.Advance(5300 * time.Millisecond)
	g.Toggle()
	if g.TimerText() != "40s" {
		t.Fatalf("expected paused display \"40s\", got %q", g.TimerText())
	}

	g.Toggle()
	sched.Advance(700 * time.Millisecond)
	if g.TimerText() != "39s" {
		t.Errorf("expected \"39s\" on the next whole second, got %q", g.TimerText())
	}
}
