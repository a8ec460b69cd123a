/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playpose

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Handle cancels a scheduled callback. Stop may be called more than once.
type Handle interface {
	Stop()
}

// Scheduler runs callbacks after a delay on the owner's event loop.
// Callbacks never run concurrently with each other or with the owner.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Handle
}

// ClockScheduler fires clockwork timers and hands their callbacks to post,
// which is expected to run them on the session loop.
type ClockScheduler struct {
	clock clockwork.Clock
	post  func(func())
}

// NewClockScheduler returns a Scheduler backed by clock. In production pass
// clockwork.NewRealClock(); tests use a fake clock.
func NewClockScheduler(clock clockwork.Clock, post func(func())) *ClockScheduler {
	return &ClockScheduler{
		clock: clock,
		post:  post,
	}
}

func (s *ClockScheduler) Now() time.Time {
	return s.clock.Now()
}

type clockHandle struct {
	timer   clockwork.Timer
	stopped atomic.Bool
}

func (h *clockHandle) Stop() {
	if h.stopped.Swap(true) {
		return
	}
	h.timer.Stop()
}

// AfterFunc schedules fn. A callback whose handle was stopped after the timer
// already fired is dropped when it reaches the loop.
func (s *ClockScheduler) AfterFunc(d time.Duration, fn func()) Handle {
	h := &clockHandle{}
	h.timer = s.clock.AfterFunc(d, func() {
		s.post(func() {
			if h.stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return h
}
