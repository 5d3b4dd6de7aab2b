package motion

import (
	"fmt"
	"strings"

	"github.com/guidoenr/beatviz/internal/easing"
	"github.com/guidoenr/beatviz/internal/gvm"
	"github.com/guidoenr/beatviz/internal/random"
)

// Interpolator yields a smoothed random value that picks a new target once
// per cycle of cycleLength beats. It holds the previous target and moves
// toward the new one during the final easeDuration beats of each cycle.
type Interpolator interface {
	Interpolate(phase, cycleLength, easeDuration float64, ease easing.Func) float64
	Reset()
}

// Strategy picks the Interpolator backing a channel's random modes.
type Strategy int

const (
	// StrategySlot uses slots registered on the shared engine.
	StrategySlot Strategy = iota
	// StrategyRleap uses a generator owned by the channel.
	StrategyRleap
)

func (s Strategy) String() string {
	if s == StrategyRleap {
		return "rleap"
	}
	return "slot"
}

// ParseStrategy maps a config name onto a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "slot", "engine":
		return StrategySlot, nil
	case "rleap", "local":
		return StrategyRleap, nil
	default:
		return StrategySlot, fmt.Errorf("unknown interpolation strategy %q", name)
	}
}

type slotInterpolator struct {
	engine *gvm.Engine
	key    string
}

// newSlotInterpolator registers key with cfg unless a slot already exists
// under that key, in which case the existing configuration wins.
func newSlotInterpolator(engine *gvm.Engine, key string, cfg gvm.SlotConfig) *slotInterpolator {
	if !engine.HasSlot(key) {
		engine.RegisterSlot(key, cfg)
	}
	return &slotInterpolator{engine: engine, key: key}
}

func (s *slotInterpolator) Interpolate(phase, cycleLength, easeDuration float64, ease easing.Func) float64 {
	return s.engine.InterpolateAt(s.key, phase, cycleLength, easeDuration, ease)
}

func (s *slotInterpolator) Reset() {
	if cfg, ok := s.engine.SlotConfig(s.key); ok {
		s.engine.RegisterSlot(s.key, cfg)
	}
}

// channelSeed derives a stable per-channel generator seed.
func channelSeed(index, salt int) uint32 {
	return uint32(random.Seeded(float64(index+1), float64(salt), 0) * 100000)
}

var (
	_ Interpolator = (*slotInterpolator)(nil)
	_ Interpolator = (*random.Rleap)(nil)
)
