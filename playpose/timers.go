/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playpose

import (
	"strconv"
	"time"
)

// timerState holds the two timer slots. At most one countdown and one phase
// handle are live; clearing a slot always nils it.
type timerState struct {
	// remaining is signed; it can run past zero before the phase ends.
	remaining int
	countdown Handle
	phase     Handle
	deadline  time.Time
	// left is the exact time remaining when the game was paused.
	left time.Duration
	text string
}

func formatRemaining(n int) string {
	return strconv.Itoa(max(n, 0)) + "s"
}

// HandleShowTimerChange shows or hides the countdown without touching game
// progression. It does nothing to the timers while the game is idle.
func (g *Game) HandleShowTimerChange(on bool) {
	g.showTimer = on

	if g.phase == PhaseIdle {
		return
	}

	if !on {
		g.stopCountdown()
		g.timers.text = ""
		return
	}

	if g.timers.countdown != nil {
		return
	}

	g.syncRemaining()

	if g.paused {
		g.timers.text = formatRemaining(g.timers.remaining)
		return
	}

	if g.timers.remaining > 0 {
		g.startCountdown()
	}
}

// ClearTimers cancels the countdown and the phase timer and blanks the display.
// It is safe to call when neither is running.
func (g *Game) ClearTimers() {
	g.stopCountdown()

	if g.timers.phase != nil {
		g.timers.phase.Stop()
		g.timers.phase = nil
	}

	g.timers.deadline = time.Time{}
	g.timers.text = ""
}

func (g *Game) startCountdown() {
	g.timers.text = formatRemaining(g.timers.remaining)
	g.armCountdown(g.firstTick())
}

// firstTick lines the countdown up with the whole seconds of the phase
// deadline, so the display reaches zero when the phase ends.
func (g *Game) firstTick() time.Duration {
	if g.timers.deadline.IsZero() {
		return time.Second
	}

	d := g.timers.deadline.Sub(g.sched.Now()) % time.Second
	if d <= 0 {
		return time.Second
	}
	return d
}

func (g *Game) armCountdown(d time.Duration) {
	g.timers.countdown = g.sched.AfterFunc(d, func() {
		g.timers.remaining--
		g.timers.text = formatRemaining(g.timers.remaining)
		g.armCountdown(time.Second)
	})
}

func (g *Game) stopCountdown() {
	if g.timers.countdown == nil {
		return
	}
	g.timers.countdown.Stop()
	g.timers.countdown = nil
}

// armPhase schedules the end of the current phase secs from now.
func (g *Game) armPhase(secs int) {
	g.armPhaseFor(time.Duration(max(secs, 0)) * time.Second)
}

func (g *Game) armPhaseFor(d time.Duration) {
	d = max(d, 0)
	g.timers.left = 0
	g.timers.deadline = g.sched.Now().Add(d)
	g.timers.phase = g.sched.AfterFunc(d, g.endPhase)
}

// timeLeft is the exact time until an armed phase deadline.
func (g *Game) timeLeft() (time.Duration, bool) {
	if g.timers.deadline.IsZero() {
		return 0, false
	}
	return g.timers.deadline.Sub(g.sched.Now()), true
}

// syncRemaining recomputes remaining, in whole seconds rounded up, from an
// armed phase deadline.
func (g *Game) syncRemaining() {
	left, ok := g.timeLeft()
	if !ok {
		return
	}
	g.timers.remaining = ceilSeconds(left)
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// Remaining returns the signed seconds left in the current phase.
func (g *Game) Remaining() int {
	return g.timers.remaining
}

// TimerText returns the countdown as displayed, or "" when hidden.
func (g *Game) TimerText() string {
	return g.timers.text
}

func (g *Game) CountdownActive() bool {
	return g.timers.countdown != nil
}

func (g *Game) PhaseTimerActive() bool {
	return g.timers.phase != nil
}
