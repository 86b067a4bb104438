package session

import "time"

// Timer is a pending callback returned by a Clock
type Timer interface {
	Stop() bool
}

// Clock schedules one-shot callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock schedules on the wall clock
var SystemClock Clock = systemClock{}

// task is a cancellable scheduled callback owned by a Session. Canceling
// bumps seq, so a callback that already fired but is still waiting for the
// session lock finds a stale seq and does nothing.
type task struct {
	timer Timer
	seq   uint64
}

func (t *task) pending() bool {
	return t.timer != nil
}

// after schedules fn on the session's logical thread, replacing whatever t
// had scheduled. Must be called with s.mu held.
func (s *Session) after(t *task, d time.Duration, fn func()) {
	s.cancel(t)
	seq := t.seq
	t.timer = s.clock.AfterFunc(d, func() {
		s.update(func() {
			if t.seq != seq {
				return
			}
			t.timer = nil
			fn()
		})
	})
}

// every runs fn each d until t is canceled. fn may cancel t itself.
func (s *Session) every(t *task, d time.Duration, fn func()) {
	s.after(t, d, func() {
		seq := t.seq
		fn()
		if t.seq == seq {
			s.every(t, d, fn)
		}
	})
}

// cancel stops t synchronously. Must be called with s.mu held.
func (s *Session) cancel(t *task) {
	t.seq++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
