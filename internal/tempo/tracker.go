package tempo

import (
	"time"

	"github.com/guidoenr/beatviz/internal/clock"
)

const (
	DefaultBPM     = 120.0
	DefaultMaxTaps = 8
	DefaultTimeout = 4 * time.Second
)

// Config controls Tracker behavior.
type Config struct {
	InitialBPM float64
	MaxTaps    int
	Timeout    time.Duration
	Clock      clock.Clock
}

// Tracker estimates tempo from the spacing of manual taps.
type Tracker struct {
	initialBPM float64
	maxTaps    int
	timeout    time.Duration
	clock      clock.Clock
	taps       []time.Time
}

// NewTracker creates a Tracker, filling unset fields with defaults.
func NewTracker(cfg Config) *Tracker {
	if cfg.InitialBPM <= 0 {
		cfg.InitialBPM = DefaultBPM
	}
	if cfg.MaxTaps < 2 {
		cfg.MaxTaps = DefaultMaxTaps
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System
	}
	return &Tracker{
		initialBPM: cfg.InitialBPM,
		maxTaps:    cfg.MaxTaps,
		timeout:    cfg.Timeout,
		clock:      cfg.Clock,
		taps:       make([]time.Time, 0, cfg.MaxTaps+1),
	}
}

// Tap records a tap at the current time, discarding taps that have aged past
// the timeout and the oldest taps beyond the history limit.
func (t *Tracker) Tap() {
	now := t.clock.Now()

	kept := t.taps[:0]
	for _, ts := range t.taps {
		if now.Sub(ts) < t.timeout {
			kept = append(kept, ts)
		}
	}
	t.taps = append(kept, now)

	if excess := len(t.taps) - t.maxTaps; excess > 0 {
		copy(t.taps, t.taps[excess:])
		t.taps = t.taps[:t.maxTaps]
	}
}

// BPM returns 60000 over the mean tap interval, or the initial BPM when fewer
// than two taps are held.
func (t *Tracker) BPM() float64 {
	if len(t.taps) < 2 {
		return t.initialBPM
	}
	total := t.taps[len(t.taps)-1].Sub(t.taps[0])
	avg := clock.Millis(total) / float64(len(t.taps)-1)
	if avg <= 0 {
		return t.initialBPM
	}
	return 60000 / avg
}

// SetInitialBPM changes the tempo reported before enough taps exist.
func (t *Tracker) SetInitialBPM(bpm float64) {
	t.initialBPM = bpm
}

// Reset clears the tap history.
func (t *Tracker) Reset() {
	t.taps = t.taps[:0]
}

// Taps returns a copy of the retained tap timestamps, oldest first.
func (t *Tracker) Taps() []time.Time {
	out := make([]time.Time, len(t.taps))
	copy(out, t.taps)
	return out
}
