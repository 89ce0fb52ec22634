package clock

import (
	"sync"
	"time"
)

// ManualClock only moves when advanced. Sleep advances it immediately and
// remembers the requested duration.
type ManualClock struct {
	now    time.Time
	sleeps []time.Duration
	s      *sync.Mutex
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{
		now: now,
		s:   &sync.Mutex{},
	}
}

func (t *ManualClock) Now() time.Time {
	t.s.Lock()
	currentTime := t.now
	t.s.Unlock()

	return currentTime
}

func (t *ManualClock) Sleep(d time.Duration) {
	t.s.Lock()
	t.sleeps = append(t.sleeps, d)
	t.now = t.now.Add(d)
	t.s.Unlock()
}

func (t *ManualClock) Advance(duration time.Duration) {
	t.s.Lock()
	t.now = t.now.Add(duration)
	t.s.Unlock()
}

func (t *ManualClock) Sleeps() []time.Duration {
	t.s.Lock()
	defer t.s.Unlock()

	return append([]time.Duration(nil), t.sleeps...)
}
