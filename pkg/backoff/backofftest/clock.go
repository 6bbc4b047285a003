// Package backofftest provides a clock that never sleeps and remembers every
// wait it was asked for.
package backofftest

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// RecordingClock fires every timer immediately and advances its notion of
// "now" by the requested duration.
type RecordingClock struct {
	clock.Clock

	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewRecordingClock returns a clock starting at now.
func NewRecordingClock(now time.Time) *RecordingClock {
	return &RecordingClock{now: now}
}

// Now implements clock.Clock.
func (c *RecordingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After implements clock.Clock.
func (c *RecordingClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.advance(d)
	return ch
}

// NewTimer implements clock.Clock.
func (c *RecordingClock) NewTimer(d time.Duration) clock.Timer {
	t := &firedTimer{ch: make(chan time.Time, 1)}
	t.ch <- c.advance(d)
	return t
}

// AfterFunc implements clock.Clock.
func (c *RecordingClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.advance(d)
	f()
	return &firedTimer{ch: make(chan time.Time)}
}

func (c *RecordingClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	return c.now
}

// Waits returns every duration waited so far.
func (c *RecordingClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// Elapsed returns the sum of all waits.
func (c *RecordingClock) Elapsed() time.Duration {
	var total time.Duration
	for _, d := range c.Waits() {
		total += d
	}
	return total
}

type firedTimer struct {
	ch chan time.Time
}

func (t *firedTimer) Chan() <-chan time.Time   { return t.ch }
func (t *firedTimer) Reset(time.Duration) bool { return false }
func (t *firedTimer) Stop() bool               { return false }
