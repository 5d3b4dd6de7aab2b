package random

import (
	"math"

	"github.com/guidoenr/beatviz/internal/easing"
)

// Rleap is a channel-local stepped random interpolator. Each integer bucket of
// t has a start value v0 and a target v1; moving to a new bucket shifts v1
// into v0 and draws a fresh v1.
type Rleap struct {
	seed      uint32
	rng       *LCG
	hasBucket bool
	bucket    int64
	hasV1     bool
	v0, v1    float64
}

// NewRleap returns an interpolator whose draws are fully determined by seed.
func NewRleap(seed uint32) *Rleap {
	return &Rleap{seed: seed, rng: NewLCG(seed)}
}

// Seed returns the seed the interpolator was built with.
func (r *Rleap) Seed() uint32 { return r.seed }

// Get interpolates linearly between the bucket's endpoints by frac(t).
func (r *Rleap) Get(t float64) float64 {
	frac := r.step(t)
	return lerp(r.v0, r.v1, frac)
}

// GetWithHold moves from v0 to v1 over the first 1-hold of the bucket and
// holds v1 for the remainder.
func (r *Rleap) GetWithHold(t, hold float64) float64 {
	return r.getEased(t, hold, nil)
}

// Endpoints returns the cached v0 and v1 of the active bucket.
func (r *Rleap) Endpoints() (float64, float64) {
	return r.v0, r.v1
}

// Reset rewinds the generator to its seed and forgets the cached bucket.
func (r *Rleap) Reset() {
	r.rng = NewLCG(r.seed)
	r.hasBucket = false
	r.hasV1 = false
	r.bucket = 0
	r.v0, r.v1 = 0, 0
}

func (r *Rleap) getEased(t, hold float64, ease easing.Func) float64 {
	frac := r.step(t)
	motion := 1 - hold
	if motion <= 0 || frac >= motion {
		return r.v1
	}
	progress := frac / motion
	if ease != nil {
		progress = ease(progress)
	}
	return lerp(r.v0, r.v1, progress)
}

func (r *Rleap) step(t float64) float64 {
	floor := math.Floor(t)
	bucket := int64(floor)
	if !r.hasBucket || bucket != r.bucket {
		if r.hasV1 {
			r.v0 = r.v1
		} else {
			r.v0 = r.rng.Float64()
		}
		r.v1 = r.rng.Float64()
		r.hasV1 = true
		r.bucket = bucket
		r.hasBucket = true
	}
	return t - floor
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Interpolate maps a beat phase onto the bucket grid of cycleLength beats.
// The value holds at v0 and moves to v1 during the final easeDuration beats
// of each cycle, shaped by ease, matching the engine slot timing.
func (r *Rleap) Interpolate(phase, cycleLength, easeDuration float64, ease easing.Func) float64 {
	if cycleLength <= 0 {
		cycleLength = 1
	}
	progress := r.step(phase/cycleLength) * cycleLength
	t := 0.0
	if easeDuration > 0 {
		t = (progress - (cycleLength - easeDuration)) / easeDuration
		t = math.Max(0, math.Min(1, t))
	}
	if ease != nil {
		t = ease(t)
	}
	return lerp(r.v0, r.v1, t)
}
