package render

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPostFromFaders(t *testing.T) {
	p := PostFromFaders([8]float64{})
	if p.Tiles != 1 || p.Monochrome != 0 || p.Mosaic != 0 || p.GridRotate || !p.neutral() {
		t.Fatalf("resting faders should be neutral: %+v", p)
	}
	p = PostFromFaders([8]float64{1, 0.5, 0.25, 1, 1, 0, 0.5, 0})
	if p.Tiles != 6 || p.Monochrome != 0.5 || p.Mosaic != 0.25 || !p.GridRotate {
		t.Fatalf("unexpected post %+v", p)
	}
	if p.Up != 0.5 || p.Down != 0 || p.Left != 0.25 || p.Right != 0 {
		t.Fatalf("unexpected shifts %+v", p)
	}
	if PostFromFaders([8]float64{0, 0, 0, 0.99}).GridRotate {
		t.Fatalf("rotation needs the fader fully up")
	}
}

func TestPostWarp(t *testing.T) {
	var zero Post
	if x, y := zero.Warp(0.123, -0.321); x != 0.123 || y != -0.321 {
		t.Fatalf("zero post moved the sample: %f,%f", x, y)
	}

	tiled := Post{Tiles: 2}
	if x, y := tiled.Warp(-0.25, 0.25); !near(x, 0) || !near(y, 0) {
		t.Fatalf("tile centers should map to the scene center, got %f,%f", x, y)
	}

	rotated := Post{Tiles: 2, GridRotate: true}
	if x, y := rotated.Warp(0.1, -0.4); !near(x, 0.3) || !near(y, 0.3) {
		t.Fatalf("odd tile not turned: %f,%f", x, y)
	}
	if x, y := rotated.Warp(-0.4, -0.4); !near(x, -0.3) || !near(y, -0.3) {
		t.Fatalf("even tile turned: %f,%f", x, y)
	}

	shifted := Post{Left: 0.25, Down: 0.1}
	if x, y := shifted.Warp(0, 0); !near(x, 0.25) || !near(y, -0.1) {
		t.Fatalf("shift=%f,%f want 0.25,-0.1", x, y)
	}

	mosaic := Post{Mosaic: 1}
	ax, _ := mosaic.Warp(0.01, 0)
	bx, _ := mosaic.Warp(0.05, 0)
	if ax != bx {
		t.Fatalf("samples in one mosaic cell differ: %f vs %f", ax, bx)
	}
}

func TestPostTintMonochrome(t *testing.T) {
	red := colorful.Color{R: 1}
	if got := (&Post{}).Tint(red); got != red {
		t.Fatalf("zero post tinted color: %v", got)
	}
	grey := (&Post{Monochrome: 1}).Tint(red)
	if !near(grey.R, grey.G) || !near(grey.G, grey.B) {
		t.Fatalf("monochrome color %v is not grey", grey)
	}
}

func TestRenderMonochromeUsesGreyRamp(t *testing.T) {
	colors, err := NewColorPalette(DefaultColors)
	if err != nil {
		t.Fatal(err)
	}
	colors.SetAll(true)
	r, err := New(30, 8, "", colors, true)
	if err != nil {
		t.Fatal(err)
	}
	frame := r.Render(State{
		Values: []float64{0.3, 0.7, 0.1, 0.9, 0.5, 0.2, 0.8, 0.4},
		Time:   2,
		Post:   Post{Monochrome: 1},
	})
	for _, line := range frame.Lines {
		for _, part := range strings.Split(line, "\x1b[38;5;")[1:] {
			end := strings.IndexByte(part, 'm')
			code, err := strconv.Atoi(part[:end])
			if err != nil {
				t.Fatalf("bad color code in %q", part)
			}
			if code < 232 {
				t.Fatalf("color code %d outside the grey ramp", code)
			}
		}
	}
}

func TestRenderMosaicRepeatsCells(t *testing.T) {
	r, err := New(40, 12, "", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	frame := r.Render(State{
		Values: []float64{0.3, 0.7, 0.1, 0.9, 0.5, 0.2, 0.8, 0.4},
		Scene:  2,
		Time:   1,
		Post:   Post{Mosaic: 1},
	})
	row0 := []rune(frame.Lines[0])
	row1 := []rune(frame.Lines[1])
	for x := 1; x < 6; x++ {
		if row0[x] != row0[0] {
			t.Fatalf("column %d differs inside the first cell", x)
		}
	}
	if string(row0[:6]) != string(row1[:6]) {
		t.Fatalf("rows 0 and 1 differ inside the first cell")
	}
}
