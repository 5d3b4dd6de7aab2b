package motion

import (
	"github.com/guidoenr/beatviz/internal/clock"
	"github.com/guidoenr/beatviz/internal/easing"
	"github.com/guidoenr/beatviz/internal/gvm"
)

// DefaultChannels is the channel count used by the visualizer.
const DefaultChannels = 8

// GroupConfig configures a Group. Every channel shares the engine, clock and
// division source.
type GroupConfig struct {
	Count           int
	BPM             float64
	Engine          *gvm.Engine
	Clock           clock.Clock
	Division        func() gvm.Division
	Strategy        Strategy
	Ease            easing.Func
	ContinuousTempo bool
}

// Group is a fixed, ordered set of channels driven at a shared tempo.
type Group struct {
	bpm    float64
	values []*Value
}

// NewGroup creates Count channels, all starting in ModeZero.
func NewGroup(cfg GroupConfig) *Group {
	if cfg.Count <= 0 {
		cfg.Count = DefaultChannels
	}
	if cfg.BPM <= 0 {
		cfg.BPM = 120
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System
	}
	if cfg.Engine == nil {
		cfg.Engine = gvm.New(gvm.Config{BPM: cfg.BPM, Clock: cfg.Clock})
	}

	g := &Group{bpm: cfg.BPM, values: make([]*Value, cfg.Count)}
	for i := range g.values {
		g.values[i] = NewValue(ValueConfig{
			Index:           i,
			BPM:             cfg.BPM,
			Engine:          cfg.Engine,
			Clock:           cfg.Clock,
			Division:        cfg.Division,
			Strategy:        cfg.Strategy,
			Ease:            cfg.Ease,
			ContinuousTempo: cfg.ContinuousTempo,
		})
	}
	return g
}

// Len returns the channel count.
func (g *Group) Len() int { return len(g.values) }

// Channel returns channel i, or nil when out of range.
func (g *Group) Channel(i int) *Value {
	if i < 0 || i >= len(g.values) {
		return nil
	}
	return g.values[i]
}

// Value returns channel i's current output, or 0 when out of range.
func (g *Group) Value(i int) float64 {
	if i < 0 || i >= len(g.values) {
		return 0
	}
	return g.values[i].Value()
}

// Values returns a snapshot of every channel's output in order.
func (g *Group) Values() []float64 {
	out := make([]float64, len(g.values))
	for i, v := range g.values {
		out[i] = v.Value()
	}
	return out
}

// SetModeIndex queues a mode on channel i. Out-of-range channels are ignored.
func (g *Group) SetModeIndex(i, mode int) {
	if i < 0 || i >= len(g.values) {
		return
	}
	g.values[i].SetModeIndex(mode)
}

// SetModeIndexAll queues the same mode on every channel.
func (g *Group) SetModeIndexAll(mode int) {
	for _, v := range g.values {
		v.SetModeIndex(mode)
	}
}

// SetBPM broadcasts a tempo to every channel.
func (g *Group) SetBPM(bpm float64) {
	g.bpm = bpm
	for _, v := range g.values {
		v.SetBPM(bpm)
	}
}

// BPM returns the last broadcast tempo.
func (g *Group) BPM() float64 { return g.bpm }

// Modes returns the mode labels of the first channel.
func (g *Group) Modes() []string {
	if len(g.values) == 0 {
		return nil
	}
	return g.values[0].Modes()
}

// CurrentMode returns channel i's active mode label, or "" when out of range.
func (g *Group) CurrentMode(i int) string {
	if i < 0 || i >= len(g.values) {
		return ""
	}
	return g.values[i].Mode().String()
}

// Reset restarts every channel.
func (g *Group) Reset() {
	for _, v := range g.values {
		v.Reset()
	}
}

// ResetRandom discards cached random targets on every channel.
func (g *Group) ResetRandom() {
	for _, v := range g.values {
		v.ResetRandom()
	}
}
