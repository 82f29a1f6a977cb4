package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies "now" for elapsed and pause accounting.
//
// The session never reads wall time directly. Implementations must be
// monotonic: Now never returns a time before a previous call.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process clock. time.Now carries a monotonic reading,
// so differences between two calls are immune to wall-clock jumps.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// sequence stamps records with a strictly increasing index.
//
// Indices keep counting across Restart so that every record a session ever
// produced has a distinct position in the trial log.
type sequence struct {
	n atomic.Int64
}

// Next returns the next index, starting at 1.
func (s *sequence) Next() int {
	return int(s.n.Add(1))
}

// Current returns the last index handed out.
func (s *sequence) Current() int {
	return int(s.n.Load())
}

// replayClock replays recorded command offsets.
//
// Before each stored command the replayer moves the clock to the offset the
// command was originally applied at, which reproduces elapsed times exactly.
type replayClock struct {
	now time.Time
}

func (c *replayClock) Now() time.Time {
	return c.now
}

func (c *replayClock) set(t time.Time) {
	if t.After(c.now) {
		c.now = t
	}
}
