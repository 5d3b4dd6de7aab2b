package app

import (
	"math/rand"
	"time"
)

// autoTapper produces humanised taps at a fixed tempo so the visualizer can
// run unattended. Each tap lands within jitter of the ideal beat.
type autoTapper struct {
	rng      *rand.Rand
	interval time.Duration
	jitter   time.Duration
	next     time.Time
	started  bool
}

func newAutoTapper(bpm float64, seed int64) *autoTapper {
	if bpm <= 0 {
		return nil
	}
	interval := time.Duration(60000 / bpm * float64(time.Millisecond))
	return &autoTapper{
		rng:      rand.New(rand.NewSource(seed)),
		interval: interval,
		jitter:   interval / 50,
	}
}

// Due reports whether a tap should be issued at now and schedules the next.
func (t *autoTapper) Due(now time.Time) bool {
	if t == nil {
		return false
	}
	if !t.started {
		t.started = true
		t.next = now.Add(t.interval)
		return true
	}
	if now.Before(t.next) {
		return false
	}
	offset := time.Duration((t.rng.Float64()*2 - 1) * float64(t.jitter))
	t.next = t.next.Add(t.interval + offset)
	if !t.next.After(now) {
		t.next = now.Add(t.interval)
	}
	return true
}
