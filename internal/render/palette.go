package render

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	defaultGlyphs = []rune("  .,:-;+=*%#@▓▒░█")
	boxGlyphs     = []rune(" ░▒▓█")
	linesGlyphs   = []rune(" `.-=+*/\\|╱╲╳╬")
	sparkGlyphs   = []rune("  ´`^\"~:;*+×•¤°oO@#█")
)

// Glyphs returns the characters used for brightness mapping.
func Glyphs(name string) []rune {
	switch name {
	case "box":
		return boxGlyphs
	case "lines":
		return linesGlyphs
	case "spark":
		return sparkGlyphs
	default:
		return defaultGlyphs
	}
}

// GlyphNames returns all glyph set identifiers.
func GlyphNames() []string {
	return []string{"default", "box", "lines", "spark"}
}

// DefaultColors are the eight toggleable palette entries.
var DefaultColors = []string{
	"#6b2a7b",
	"#d74c91",
	"#1e7e28",
	"#df3a0d",
	"#136a87",
	"#ffd700",
	"#cada19",
	"#b9d9e1",
}

var white = colorful.Color{R: 1, G: 1, B: 1}

// ColorPalette is a fixed list of colors, each of which can be toggled on or
// off. With nothing enabled the active palette is plain white.
type ColorPalette struct {
	colors  []colorful.Color
	enabled []bool
	active  []colorful.Color
}

// NewColorPalette parses hex colors. All entries start disabled.
func NewColorPalette(hexes []string) (*ColorPalette, error) {
	p := &ColorPalette{
		colors:  make([]colorful.Color, len(hexes)),
		enabled: make([]bool, len(hexes)),
	}
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette color %d: %w", i, err)
		}
		p.colors[i] = c
	}
	p.rebuild()
	return p, nil
}

// Len returns the number of toggleable colors.
func (p *ColorPalette) Len() int { return len(p.colors) }

// Toggle flips entry i. Out-of-range indexes are ignored.
func (p *ColorPalette) Toggle(i int) {
	if i < 0 || i >= len(p.enabled) {
		return
	}
	p.enabled[i] = !p.enabled[i]
	p.rebuild()
}

// SetAll enables or disables every entry.
func (p *ColorPalette) SetAll(on bool) {
	for i := range p.enabled {
		p.enabled[i] = on
	}
	p.rebuild()
}

// SetEnabled copies toggles from on; missing entries are disabled.
func (p *ColorPalette) SetEnabled(on []bool) {
	for i := range p.enabled {
		p.enabled[i] = i < len(on) && on[i]
	}
	p.rebuild()
}

// Enabled returns a copy of the toggle states.
func (p *ColorPalette) Enabled() []bool {
	out := make([]bool, len(p.enabled))
	copy(out, p.enabled)
	return out
}

// Active returns the enabled colors in order.
func (p *ColorPalette) Active() []colorful.Color {
	out := make([]colorful.Color, len(p.active))
	copy(out, p.active)
	return out
}

// ActiveHex returns the enabled colors as hex strings.
func (p *ColorPalette) ActiveHex() []string {
	out := make([]string, len(p.active))
	for i, c := range p.active {
		out[i] = c.Hex()
	}
	return out
}

// Pick maps u in [0,1) onto the active colors.
func (p *ColorPalette) Pick(u float64) colorful.Color {
	n := len(p.active)
	idx := int(math.Floor(clamp01(u) * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	return p.active[idx]
}

func (p *ColorPalette) rebuild() {
	p.active = p.active[:0]
	for i, on := range p.enabled {
		if on {
			p.active = append(p.active, p.colors[i])
		}
	}
	if len(p.active) == 0 {
		p.active = append(p.active, white)
	}
}
