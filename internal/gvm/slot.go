package gvm

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/guidoenr/beatviz/internal/easing"
	"github.com/guidoenr/beatviz/internal/random"
)

// SlotMode selects how a slot draws its next target.
type SlotMode int

const (
	// SlotScalar draws uniformly from [0,1).
	SlotScalar SlotMode = iota
	// SlotQuantized draws the center of one of Divisions equal buckets.
	SlotQuantized
	// SlotDiscrete picks one entry of Values.
	SlotDiscrete
)

func (m SlotMode) String() string {
	switch m {
	case SlotQuantized:
		return "quantized"
	case SlotDiscrete:
		return "discrete"
	default:
		return "scalar"
	}
}

// ParseSlotMode maps config names onto a SlotMode. float, int and array are
// accepted as aliases.
func ParseSlotMode(name string) (SlotMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "scalar", "float":
		return SlotScalar, nil
	case "quantized", "int":
		return SlotQuantized, nil
	case "discrete", "array", "set":
		return SlotDiscrete, nil
	default:
		return SlotScalar, fmt.Errorf("unknown slot mode %q", name)
	}
}

// SlotConfig describes one named interpolation stream.
type SlotConfig struct {
	Mode      SlotMode
	Divisions int
	Values    []float64

	// Seeded makes scalar draws a pure function of the bucket index and Seed.
	Seeded bool
	Seed   [2]float64

	// Ease replaces the easing callers pass to InterpolateAt when set.
	Ease easing.Func
}

// DefaultSlotConfig mirrors the defaults used for motion channels.
func DefaultSlotConfig() SlotConfig {
	return SlotConfig{
		Mode:      SlotScalar,
		Divisions: 4,
		Values:    []float64{0.25, 0.5, 0.75},
	}
}

type slot struct {
	cfg        SlotConfig
	hasBucket  bool
	lastBucket int64
	prev       float64
	next       float64
}

func newSlot(cfg SlotConfig) *slot {
	values := make([]float64, len(cfg.Values))
	copy(values, cfg.Values)
	cfg.Values = values
	return &slot{cfg: cfg}
}

func (s *slot) draw(rng *rand.Rand, bucket int64) float64 {
	switch s.cfg.Mode {
	case SlotQuantized:
		div := s.cfg.Divisions
		if div <= 0 {
			div = 1
		}
		return (math.Floor(rng.Float64()*float64(div)) + 0.5) / float64(div)
	case SlotDiscrete:
		if len(s.cfg.Values) == 0 {
			return 0.5
		}
		return s.cfg.Values[rng.Intn(len(s.cfg.Values))]
	default:
		if s.cfg.Seeded {
			return random.Seeded(float64(bucket), s.cfg.Seed[0], s.cfg.Seed[1])
		}
		return rng.Float64()
	}
}

// advance regenerates targets when bucket differs from the cached one.
func (s *slot) advance(rng *rand.Rand, bucket int64) bool {
	if s.hasBucket && bucket == s.lastBucket {
		return false
	}
	if s.hasBucket {
		s.prev = s.next
	} else {
		s.prev = s.draw(rng, bucket-1)
	}
	s.next = s.draw(rng, bucket)
	s.lastBucket = bucket
	s.hasBucket = true
	return true
}
