package motion

import (
	"fmt"
	"math"
	"time"

	"github.com/guidoenr/beatviz/internal/clock"
	"github.com/guidoenr/beatviz/internal/easing"
	"github.com/guidoenr/beatviz/internal/gvm"
	"github.com/guidoenr/beatviz/internal/random"
)

const (
	randomEaseCycle = 2.0
	randomEaseEase  = 2.0
	holdNoiseCycle  = 2.0
	holdNoiseEase   = 1.0
)

// ValueConfig configures a single channel.
type ValueConfig struct {
	Index    int
	BPM      float64
	Engine   *gvm.Engine
	Clock    clock.Clock
	Division func() gvm.Division
	Strategy Strategy
	// Ease shapes the transitions of the random modes; nil means InOutSine.
	Ease easing.Func
	// ContinuousTempo rebases the start time on BPM changes so the beat
	// phase does not jump.
	ContinuousTempo bool
}

type randomSource struct {
	interp Interpolator
	key    string
}

// Value is one channel's waveform state machine. Mode requests are queued
// and applied only when the integer beat index changes.
type Value struct {
	index      int
	engine     *gvm.Engine
	clock      clock.Clock
	division   func() gvm.Division
	strategy   Strategy
	ease       easing.Func
	continuous bool

	bpm          float64
	beatDuration float64
	start        time.Time
	hasBeat      bool
	lastBeat     int64

	mode       Mode
	pending    Mode
	hasPending bool

	easeSrc randomSource
	holdSrc randomSource
}

// SlotKey returns the engine slot key used by channel index for a random mode.
func SlotKey(index int, mode Mode) string {
	return fmt.Sprintf("motion/%d/%s", index, mode)
}

// NewValue creates a channel in ModeZero.
func NewValue(cfg ValueConfig) *Value {
	if cfg.BPM <= 0 {
		cfg.BPM = 120
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System
	}
	if cfg.Engine == nil {
		cfg.Engine = gvm.New(gvm.Config{BPM: cfg.BPM, Clock: cfg.Clock})
	}
	if cfg.Division == nil {
		cfg.Division = func() gvm.Division { return gvm.DivisionNormal }
	}
	if cfg.Ease == nil {
		cfg.Ease = easing.InOutSine
	}

	v := &Value{
		index:        cfg.Index,
		engine:       cfg.Engine,
		clock:        cfg.Clock,
		division:     cfg.Division,
		strategy:     cfg.Strategy,
		ease:         cfg.Ease,
		continuous:   cfg.ContinuousTempo,
		bpm:          cfg.BPM,
		beatDuration: 60000 / cfg.BPM,
		start:        cfg.Clock.Now(),
		mode:         ModeZero,
	}
	v.easeSrc = v.newSource(ModeRandomEase, 0)
	v.holdSrc = v.newSource(ModeHoldNoise, 1)
	return v
}

func (v *Value) newSource(mode Mode, salt int) randomSource {
	key := SlotKey(v.index, mode)
	if v.strategy == StrategyRleap {
		return randomSource{interp: random.NewRleap(channelSeed(v.index, salt)), key: key}
	}
	src := randomSource{interp: newSlotInterpolator(v.engine, key, gvm.DefaultSlotConfig()), key: key}
	v.engine.Count(key, v.division())
	return src
}

// Index returns the channel index.
func (v *Value) Index() int { return v.index }

// SetModeIndex queues mode i (clamped into range) for the next beat. A
// request made while another is still queued is dropped.
func (v *Value) SetModeIndex(i int) {
	if v.hasPending {
		return
	}
	v.pending = ClampMode(i)
	v.hasPending = true
}

// Advance moves the state machine to the current beat. When the beat index
// differs from the last observed one, a queued mode is applied. It reports
// whether a new beat index was observed.
func (v *Value) Advance() bool {
	beat := int64(math.Floor(v.elapsed() / v.beatDuration))
	if v.hasBeat && beat == v.lastBeat {
		return false
	}
	if v.hasPending {
		v.mode = v.pending
		v.hasPending = false
	}
	v.lastBeat = beat
	v.hasBeat = true
	return true
}

// Value advances the state machine and evaluates the active mode.
func (v *Value) Value() float64 {
	v.Advance()
	return v.evaluate()
}

func (v *Value) evaluate() float64 {
	switch v.mode {
	case ModeZero:
		return 0
	case ModeOne:
		return 1
	case ModePulse:
		return pulse(v.Phase())
	case ModeZigzag:
		return zigzag(v.Phase())
	case ModeSine:
		return sine(v.Phase())
	case ModeFourStep:
		return fourStep(v.Phase())
	case ModeRandomEase:
		return easing.ClampInOutCubic(v.sample(v.easeSrc, randomEaseCycle, randomEaseEase))
	case ModeHoldNoise:
		return v.sample(v.holdSrc, holdNoiseCycle, holdNoiseEase)
	default:
		return v.Phase()
	}
}

func (v *Value) sample(src randomSource, cycleLength, easeDuration float64) float64 {
	phase := v.Phase()
	if v.strategy == StrategySlot {
		phase = v.engine.Count(src.key, v.division())
	}
	return src.interp.Interpolate(phase, cycleLength, easeDuration, v.ease)
}

// Phase returns the channel's continuous beat count, scaled by the division.
func (v *Value) Phase() float64 {
	return v.elapsed() / v.beatDuration * v.division().Multiplier()
}

func (v *Value) elapsed() float64 {
	return clock.Millis(v.clock.Now().Sub(v.start))
}

// SetBPM changes the beat duration. The start time is kept, so the phase
// jumps unless the channel was built with ContinuousTempo, in which case the
// channel and its engine slot clocks are rebased.
func (v *Value) SetBPM(bpm float64) {
	if bpm == v.bpm {
		return
	}
	if v.continuous {
		beats := v.elapsed() / v.beatDuration
		v.beatDuration = 60000 / bpm
		offset := time.Duration(beats * v.beatDuration * float64(time.Millisecond))
		v.start = v.clock.Now().Add(-offset)
		if v.strategy == StrategySlot {
			v.engine.Rebase(v.easeSrc.key, v.bpm, bpm)
			v.engine.Rebase(v.holdSrc.key, v.bpm, bpm)
		}
	} else {
		v.beatDuration = 60000 / bpm
	}
	v.bpm = bpm
}

// BPM returns the channel tempo.
func (v *Value) BPM() float64 { return v.bpm }

// BeatDuration returns the beat length in milliseconds.
func (v *Value) BeatDuration() float64 { return v.beatDuration }

// Reset restarts the channel clock and clears any queued mode.
func (v *Value) Reset() {
	v.start = v.clock.Now()
	v.hasBeat = false
	v.lastBeat = 0
	v.hasPending = false
}

// ResetRandom discards the cached targets of both random modes. Rleap
// channels replay their sequence from the seed.
func (v *Value) ResetRandom() {
	v.easeSrc.interp.Reset()
	v.holdSrc.interp.Reset()
}

// Mode returns the active mode.
func (v *Value) Mode() Mode { return v.mode }

// ModeIndex returns the active mode's position in the mode list.
func (v *Value) ModeIndex() int { return int(v.mode) }

// Pending returns the queued mode, if any.
func (v *Value) Pending() (Mode, bool) { return v.pending, v.hasPending }

// Waiting reports whether a mode change is queued.
func (v *Value) Waiting() bool { return v.hasPending }

// Modes lists the mode labels this channel can select.
func (v *Value) Modes() []string { return ModeNames() }
