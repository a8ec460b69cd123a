/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playpose

import "time"

// Debouncer collapses bursts of calls into one trailing call, made delay
// after the last call with the last call's argument.
type Debouncer[T any] struct {
	sched   Scheduler
	delay   time.Duration
	fn      func(T)
	pending Handle
	last    T
}

func NewDebouncer[T any](sched Scheduler, delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		sched: sched,
		delay: delay,
		fn:    fn,
	}
}

// Call cancels any pending invocation and schedules a new one.
func (d *Debouncer[T]) Call(v T) {
	d.Stop()

	d.last = v
	d.pending = d.sched.AfterFunc(d.delay, func() {
		d.pending = nil
		d.fn(v)
	})
}

// Pending reports whether a trailing call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	return d.pending != nil
}

// Stop drops the pending invocation, if any.
func (d *Debouncer[T]) Stop() {
	if d.pending == nil {
		return
	}
	d.pending.Stop()
	d.pending = nil
}

// Flush runs the pending invocation now instead of waiting for the delay.
func (d *Debouncer[T]) Flush() {
	if d.pending == nil {
		return
	}
	d.Stop()
	d.fn(d.last)
}
