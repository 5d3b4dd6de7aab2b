package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	maxTiles       = 6
	mosaicCells    = 40.0
	mosaicMinScale = 0.15
	maxShift       = 0.5
)

// Post holds the screen-space effects applied after a scene is sampled. The
// zero value leaves the frame untouched.
type Post struct {
	// Tiles repeats the scene Tiles times along each axis; 0 and 1 mean once.
	Tiles int
	// Monochrome blends colors toward grey, 0 keeps full color.
	Monochrome float64
	// Mosaic coarsens the sample grid, 0 is off and 1 is the coarsest.
	Mosaic float64
	// GridRotate turns every other tile by 180 degrees.
	GridRotate bool
	// Shifts scroll the frame, each in [0,0.5] of the screen.
	Up, Down, Left, Right float64
}

// PostFromFaders maps eight controller faders in [0,1] onto Post: tile count,
// monochrome, mosaic, tile rotation (fully up only), then up, down, left and
// right shift.
func PostFromFaders(f [8]float64) Post {
	return Post{
		Tiles:      int(math.Floor(clamp01(f[0])*(maxTiles-1))) + 1,
		Monochrome: clamp01(f[1]),
		Mosaic:     clamp01(f[2]),
		GridRotate: f[3] == 1,
		Up:         clamp01(f[4]) * maxShift,
		Down:       clamp01(f[5]) * maxShift,
		Left:       clamp01(f[6]) * maxShift,
		Right:      clamp01(f[7]) * maxShift,
	}
}

func (p *Post) neutral() bool {
	return p.Tiles <= 1 && p.Mosaic <= 0 && p.Up == p.Down && p.Left == p.Right
}

// Warp maps a screen coordinate in [-0.5,0.5) to the coordinate the scene is
// sampled at.
func (p *Post) Warp(x, y float64) (float64, float64) {
	if p.neutral() {
		return x, y
	}
	u := frac(x + 0.5 + p.Left - p.Right)
	v := frac(y + 0.5 + p.Up - p.Down)

	if p.Tiles > 1 {
		n := float64(p.Tiles)
		col := math.Floor(u * n)
		row := math.Floor(v * n)
		u = frac(u * n)
		v = frac(v * n)
		if p.GridRotate && int(col+row)%2 == 1 {
			u = 1 - u
			v = 1 - v
		}
	}

	if p.Mosaic > 0 {
		cells := math.Max(1, math.Round(mosaicCells*lerp(1, mosaicMinScale, p.Mosaic)))
		u = (math.Floor(u*cells) + 0.5) / cells
		v = (math.Floor(v*cells) + 0.5) / cells
	}
	return u - 0.5, v - 0.5
}

// Tint applies the monochrome blend to c.
func (p *Post) Tint(c colorful.Color) colorful.Color {
	if p.Monochrome <= 0 {
		return c
	}
	l := 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
	return c.BlendRgb(colorful.Color{R: l, G: l, B: l}, p.Monochrome)
}
