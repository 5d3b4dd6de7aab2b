package render

import (
	"strings"
	"testing"
)

func TestNewRejectsBadDimensions(t *testing.T) {
	if _, err := New(0, 10, "", nil, false); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestRenderProducesFullFrame(t *testing.T) {
	r, err := New(40, 12, "", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := range SceneNames() {
		frame := r.Render(State{
			Values: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8},
			Scene:  i,
			BPM:    120,
			Time:   1.5,
		})
		if len(frame.Lines) != 12 {
			t.Fatalf("scene %d: lines=%d want 12", i, len(frame.Lines))
		}
		for y, line := range frame.Lines {
			if n := len([]rune(line)); n != 40 {
				t.Fatalf("scene %d line %d: width=%d want 40", i, y, n)
			}
		}
		if !strings.Contains(frame.Status, strings.ToUpper(SceneName(i))) {
			t.Fatalf("status %q missing scene name", frame.Status)
		}
	}
}

func TestBarsSceneFollowsValues(t *testing.T) {
	r, err := New(8, 10, "box", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	scene, _ := ParseScene("bars")
	frame := r.Render(State{Values: []float64{1, 0, 1, 0, 1, 0, 1, 0}, Scene: scene})
	bottom := []rune(frame.Lines[9])
	full := boxGlyphs[len(boxGlyphs)-1]
	empty := boxGlyphs[0]
	for x, ch := range bottom {
		want := empty
		if x%2 == 0 {
			want = full
		}
		if ch != want {
			t.Fatalf("column %d glyph %q want %q", x, ch, want)
		}
	}
}

func TestOverlayShowsChannels(t *testing.T) {
	st := State{
		Values:    []float64{0, 0.5, 1},
		Modes:     []string{"Zero", "Sine", "One"},
		Pending:   []bool{false, true, false},
		ModeNames: []string{"Zero", "One"},
		BPM:       128,
		Division:  "half",
	}
	lines := Overlay(st, 0)
	if len(lines) != 5 {
		t.Fatalf("lines=%d want 5", len(lines))
	}
	if !strings.Contains(lines[0], "128.00") || !strings.Contains(lines[0], "half") {
		t.Fatalf("header %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], "Sine *") {
		t.Fatalf("pending marker missing: %q", lines[2])
	}
	if strings.HasSuffix(lines[1], "*") {
		t.Fatalf("unexpected pending marker: %q", lines[1])
	}
	if !strings.Contains(lines[4], "1=One") {
		t.Fatalf("legend %q", lines[4])
	}
}

func TestToggleUIOverlaysFrame(t *testing.T) {
	r, err := New(60, 12, "", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !r.ToggleUI() {
		t.Fatalf("expected overlay on")
	}
	frame := r.Render(State{Values: []float64{0.5}, Modes: []string{"Sine"}, BPM: 90})
	if !strings.HasPrefix(frame.Lines[0], "BPM") {
		t.Fatalf("overlay missing: %q", frame.Lines[0])
	}
	if len(frame.Lines[0]) != 60 {
		t.Fatalf("overlay line width=%d want 60", len(frame.Lines[0]))
	}
}

func TestSelectScene(t *testing.T) {
	n := SceneCount()
	if got := SelectScene(2, 100); got != 2 {
		t.Fatalf("fixed radio=%d want 2", got)
	}
	if got := SelectScene(AutoScene, float64(n)+3.7); got != 3 {
		t.Fatalf("auto scene=%d want 3", got)
	}
	if got := SelectScene(-1, 0); got != n-1 {
		t.Fatalf("negative radio=%d want %d", got, n-1)
	}
	if v, ok := ParseScene("auto"); !ok || v != AutoScene {
		t.Fatalf("ParseScene(auto)=%d,%v", v, ok)
	}
	if _, ok := ParseScene("nope"); ok {
		t.Fatalf("expected unknown scene")
	}
}

func TestColorPaletteFallsBackToWhite(t *testing.T) {
	p, err := NewColorPalette(DefaultColors)
	if err != nil {
		t.Fatal(err)
	}
	if hex := p.ActiveHex(); len(hex) != 1 || hex[0] != "#ffffff" {
		t.Fatalf("empty selection=%v want white", hex)
	}
	p.Toggle(1)
	p.Toggle(5)
	if hex := p.ActiveHex(); len(hex) != 2 || hex[0] != "#d74c91" || hex[1] != "#ffd700" {
		t.Fatalf("active=%v", hex)
	}
	if got := p.Pick(0.99).Hex(); got != "#ffd700" {
		t.Fatalf("Pick(0.99)=%s", got)
	}
	p.SetAll(true)
	if len(p.Active()) != 8 {
		t.Fatalf("all on: %d colors", len(p.Active()))
	}
	p.SetAll(false)
	if len(p.Active()) != 1 {
		t.Fatalf("all off should fall back to white")
	}
	p.Toggle(42)
	if _, err := NewColorPalette([]string{"#zzz"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestHSVToANSIGray(t *testing.T) {
	if got := hsvToANSI(0, 0, 1); got != 255 {
		t.Fatalf("white=%d want 255", got)
	}
	if got := hsvToANSI(0, 0, 0); got != 232 {
		t.Fatalf("black=%d want 232", got)
	}
}
