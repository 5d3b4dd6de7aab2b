package random

import "math"

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 4294967296
)

// LCG is a 32-bit linear congruential generator. Two generators built from
// the same seed produce identical sequences.
type LCG struct {
	state uint32
}

// NewLCG returns a generator seeded with seed.
func NewLCG(seed uint32) *LCG {
	return &LCG{state: seed}
}

// Float64 advances the generator and returns a value in [0,1).
func (g *LCG) Float64() float64 {
	g.state = g.state*lcgMultiplier + lcgIncrement
	return float64(g.state) / lcgModulus
}

// Seeded draws a single uniform sample from a generator derived from up to
// three seed values. It has no shared state: identical arguments always
// produce an identical result, regardless of any other random draws.
func Seeded(seed1, seed2, seed3 float64) float64 {
	composite := math.Abs(
		math.Sin(seed1*108937)*74629+
			math.Sin(seed2*908713)*20941*189037+
			math.Sin(seed3*427083)*12087,
	)
	composite = math.Mod(composite, 1_000_000)
	return NewLCG(uint32(composite)).Float64()
}
