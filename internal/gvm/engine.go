package gvm

import (
	"io"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/guidoenr/beatviz/internal/clock"
	"github.com/guidoenr/beatviz/internal/easing"
)

// DefaultKey is the slot registered on every new engine.
const DefaultKey = "default"

// Config controls Engine construction.
type Config struct {
	BPM   float64
	Clock clock.Clock
	// Seed feeds the engine's own random stream; zero picks a time-based seed.
	Seed int64
	Log  *log.Logger
}

// Engine drives beat-synchronized parameters. It keeps an independent beat
// clock per key and a registry of slots that cache random targets per cycle.
// It is not safe for concurrent use; callers drive it from a single tick loop.
type Engine struct {
	bpm    float64
	clock  clock.Clock
	rng    *rand.Rand
	log    *log.Logger
	starts map[string]time.Time
	slots  map[string]*slot
	warned map[string]bool
}

// New creates an Engine with the default slot registered.
func New(cfg Config) *Engine {
	if cfg.BPM <= 0 {
		cfg.BPM = 120
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Log == nil {
		cfg.Log = log.New(io.Discard, "", 0)
	}
	e := &Engine{
		bpm:    cfg.BPM,
		clock:  cfg.Clock,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		log:    cfg.Log,
		starts: make(map[string]time.Time),
		slots:  make(map[string]*slot),
		warned: make(map[string]bool),
	}
	e.RegisterSlot(DefaultKey, SlotConfig{Mode: SlotScalar})
	return e
}

// SetBPM sets the tempo. Callers guarantee bpm > 0.
func (e *Engine) SetBPM(bpm float64) {
	e.bpm = bpm
}

// BPM returns the current tempo.
func (e *Engine) BPM() float64 {
	return e.bpm
}

// BeatDuration returns the effective beat length in milliseconds.
func (e *Engine) BeatDuration(div Division) float64 {
	return 60000 / (e.bpm * div.Multiplier())
}

// Count returns the continuous number of beats elapsed since key was first
// referenced. The first call for a key starts its clock and returns 0.
func (e *Engine) Count(key string, div Division) float64 {
	now := e.clock.Now()
	start, ok := e.starts[key]
	if !ok {
		e.starts[key] = now
		start = now
	}
	return clock.Millis(now.Sub(start)) / e.BeatDuration(div)
}

// Rebase moves the clock of key so its beat count is unchanged when the tempo
// goes from oldBPM to newBPM. Keys without a running clock are ignored.
func (e *Engine) Rebase(key string, oldBPM, newBPM float64) {
	start, ok := e.starts[key]
	if !ok || oldBPM <= 0 || newBPM <= 0 || oldBPM == newBPM {
		return
	}
	now := e.clock.Now()
	elapsed := float64(now.Sub(start)) * oldBPM / newBPM
	e.starts[key] = now.Add(-time.Duration(elapsed))
}

// RegisterSlot creates or replaces the slot stored under key. Replacing a slot
// discards its cached targets but keeps its beat clock running.
func (e *Engine) RegisterSlot(key string, cfg SlotConfig) {
	e.slots[key] = newSlot(cfg)
	delete(e.warned, key)
}

// HasSlot reports whether key is registered.
func (e *Engine) HasSlot(key string) bool {
	_, ok := e.slots[key]
	return ok
}

// SlotConfig returns the configuration registered under key.
func (e *Engine) SlotConfig(key string) (SlotConfig, bool) {
	s, ok := e.slots[key]
	if !ok {
		return SlotConfig{}, false
	}
	cfg := s.cfg
	cfg.Values = append([]float64(nil), s.cfg.Values...)
	return cfg, true
}

// Slots returns the registered keys in sorted order.
func (e *Engine) Slots() []string {
	keys := make([]string, 0, len(e.slots))
	for k := range e.slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SlotTargets returns the cached previous and next targets for key.
func (e *Engine) SlotTargets(key string) (prev, next float64, ok bool) {
	s, ok := e.slots[key]
	if !ok || !s.hasBucket {
		return 0, 0, false
	}
	return s.prev, s.next, true
}

// InterpolatedValue returns the eased value of slot key at its current beat
// phase. Unregistered keys log a warning and yield 0.
func (e *Engine) InterpolatedValue(key string, cycleLength, easeDuration float64, ease easing.Func, div Division) float64 {
	return e.InterpolateAt(key, e.Count(key, div), cycleLength, easeDuration, ease)
}

// InterpolateAt evaluates slot key at an explicit beat phase. A slot with its
// own Ease uses it instead of ease. The value holds
// at the previous target, moves to the next target during the final
// easeDuration beats of each cycle, and targets regenerate only when
// floor(phase/cycleLength) changes.
func (e *Engine) InterpolateAt(key string, phase, cycleLength, easeDuration float64, ease easing.Func) float64 {
	if !e.checkSlot(key) {
		return 0
	}
	s := e.slots[key]
	if cycleLength <= 0 {
		cycleLength = 1
	}

	bucket := int64(math.Floor(phase / cycleLength))
	progress := math.Mod(phase, cycleLength)
	if progress < 0 {
		progress += cycleLength
	}
	s.advance(e.rng, bucket)

	t := 0.0
	if easeDuration > 0 {
		t = clamp01((progress - (cycleLength - easeDuration)) / easeDuration)
	}
	if s.cfg.Ease != nil {
		ease = s.cfg.Ease
	}
	if ease != nil {
		t = ease(t)
	}
	return lerp(s.prev, s.next, t)
}

// Pulse is a triangle wave over two beats: 1 at even beats, 0 at odd beats.
func (e *Engine) Pulse(key string, div Division) float64 {
	return math.Abs(math.Mod(e.Count(key, div), 2) - 1)
}

// ResetAll drops every slot and beat clock, then re-registers the default slot.
func (e *Engine) ResetAll() {
	e.slots = make(map[string]*slot)
	e.starts = make(map[string]time.Time)
	e.warned = make(map[string]bool)
	e.RegisterSlot(DefaultKey, SlotConfig{Mode: SlotScalar})
}

func (e *Engine) checkSlot(key string) bool {
	if _, ok := e.slots[key]; ok {
		return true
	}
	if !e.warned[key] {
		e.log.Printf("slot %q does not exist", key)
		e.warned[key] = true
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(current, target, factor float64) float64 {
	return current*(1-factor) + target*factor
}
