// Package countdown tracks the running time of the kitchen timer.
package countdown

import (
	"fmt"
	"math"
	"time"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/binding"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

// DefaultDuration is the length of one timer run.
const DefaultDuration = 5 * time.Minute

// Stage buckets the remaining time for display colouring.
type Stage int

const (
	StageFresh   Stage = iota // more than 3 minutes left
	StageMiddle               // more than 1 minute left
	StageClosing              // under a minute
	StageDone
)

// Countdown accumulates elapsed time while the timer display is running.
// It is driven by Observe and is not safe for concurrent use.
type Countdown struct {
	duration time.Duration
	elapsed  time.Duration
	last     time.Time
	running  bool
	expired  bool
	finished bool
}

// New returns a countdown of duration d. A non-positive d uses
// DefaultDuration.
func New(d time.Duration) *Countdown {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Countdown{duration: d}
}

// Duration returns the full length of a run.
func (c *Countdown) Duration() time.Duration { return c.duration }

// Remaining returns the time left, never negative.
func (c *Countdown) Remaining() time.Duration {
	if c.elapsed >= c.duration {
		return 0
	}
	return c.duration - c.elapsed
}

// Observe folds the current display value in at time now. It returns true
// exactly once per run, on the first observation that finds the countdown
// running with no time left.
func (c *Countdown) Observe(display state.Display, now time.Time) bool {
	switch display {
	case binding.Running:
		// A run that restarts after finishing is a new run.
		if c.finished {
			c.Reset()
		}
		if c.running {
			if d := now.Sub(c.last); d > 0 {
				c.elapsed += d
			}
		}
		c.running = true
		c.last = now
		if !c.expired && c.elapsed >= c.duration {
			c.expired = true
			return true
		}
	case binding.Idle:
		c.Reset()
	case binding.Finished:
		c.running = false
		c.finished = true
	default:
		// paused: hold
		c.running = false
	}
	return false
}

// Reset rewinds to a full run.
func (c *Countdown) Reset() {
	c.elapsed = 0
	c.running = false
	c.expired = false
	c.finished = false
	c.last = time.Time{}
}

// Stage reports the colour stage for the remaining time.
func (c *Countdown) Stage() Stage {
	return StageFor(c.Remaining())
}

// StageFor buckets remaining.
func StageFor(remaining time.Duration) Stage {
	switch {
	case remaining <= 0:
		return StageDone
	case remaining <= time.Minute:
		return StageClosing
	case remaining <= 3*time.Minute:
		return StageMiddle
	default:
		return StageFresh
	}
}

// Format renders d as mm:ss, rounding partial seconds up so a run shows its
// full length until a whole second has passed.
func Format(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	secs := int(math.Ceil(d.Seconds()))
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Unit is the label shown under the clock.
func Unit(d time.Duration) string {
	if d > time.Minute {
		return "minutes"
	}
	return "seconds"
}
