package render

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrRendererQuit is returned by Frame.Present when the output window closes.
var ErrRendererQuit = errors.New("renderer closed")

type backend int

const (
	backendASCII backend = iota
	backendSDL
)

// State is everything a frame depends on.
type State struct {
	Values    []float64
	Modes     []string
	Pending   []bool
	ModeNames []string
	BPM       float64
	Division  string
	Scene     int
	Count     float64
	Time      float64
	FPS       float64
	Taps      int
	Post      Post
}

// Frame contains the rendered ASCII lines and status text. Present is set by
// windowed backends and flushes the frame to the window.
type Frame struct {
	Lines   []string
	Status  string
	Present func(status string) error
}

var (
	resetANSI       = "\x1b[0m"
	precomputedANSI [256]string
)

func init() {
	for i := range precomputedANSI {
		precomputedANSI[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
	}
}

// Renderer draws scenes driven by channel values.
type Renderer struct {
	width         int
	height        int
	glyphs        []rune
	glyphName     string
	colors        *ColorPalette
	useANSI       bool
	showUI        bool
	mode          backend
	sdl           *sdlState
	xCoords       []float64
	yCoords       []float64
	statusBuilder strings.Builder
}

// New creates a Renderer. A nil palette uses DefaultColors with nothing
// enabled.
func New(width, height int, glyphName string, colors *ColorPalette, useANSI bool) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: width=%d height=%d", width, height)
	}
	if colors == nil {
		var err error
		colors, err = NewColorPalette(DefaultColors)
		if err != nil {
			return nil, err
		}
	}
	if glyphName == "" {
		glyphName = "default"
	}
	return &Renderer{
		width:     width,
		height:    height,
		glyphs:    Glyphs(glyphName),
		glyphName: glyphName,
		colors:    colors,
		useANSI:   useANSI,
	}, nil
}

// Resize updates the framebuffer dimensions.
func (r *Renderer) Resize(width, height int) {
	changed := false
	if width > 0 && r.width != width {
		r.width = width
		changed = true
	}
	if height > 0 && r.height != height {
		r.height = height
		changed = true
	}
	if changed {
		r.xCoords = nil
		r.yCoords = nil
		r.resizeSDL()
	}
}

// Colors returns the palette the renderer draws with.
func (r *Renderer) Colors() *ColorPalette { return r.colors }

// ToggleUI flips the overlay and returns the new state.
func (r *Renderer) ToggleUI() bool {
	r.showUI = !r.showUI
	return r.showUI
}

// ShowUI reports whether the overlay is visible.
func (r *Renderer) ShowUI() bool { return r.showUI }

// EnableSDL switches to the SDL window backend.
func (r *Renderer) EnableSDL() error {
	return r.initSDL(r.width, r.height)
}

// Windowed reports whether frames are presented in a window.
func (r *Renderer) Windowed() bool { return r.windowedSDL() }

// Close releases backend resources.
func (r *Renderer) Close() error { return r.closeSDL() }

// Render draws one frame of the selected scene.
func (r *Renderer) Render(st State) Frame {
	if r.width <= 0 || r.height <= 0 {
		return Frame{}
	}

	params := ParamsFrom(st.Values)
	fn := scenes[wrap(st.Scene, len(scenes))].fn

	r.ensureCoordinateCache(r.width, r.height)
	status := r.buildStatus(st)

	if r.mode == backendSDL {
		return r.renderSDL(st, &params, fn, status)
	}

	width := r.width
	height := r.height
	xCoords := r.xCoords
	yCoords := r.yCoords
	useANSI := r.useANSI
	lines := make([]string, height)

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > height {
		numWorkers = height
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	rowJobs := make(chan int, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rowJobs {
				var builder strings.Builder
				builder.Grow(width * 8)
				lastColor := -1
				for x := 0; x < width; x++ {
					brightness, col := r.shade(xCoords[x], yCoords[y], fn, &params, &st.Post, st.Time)
					if useANSI {
						h, s, v := col.Hsv()
						fg := hsvToANSI(h/360, s, v*brightness)
						if fg != lastColor {
							builder.WriteString(colorCode(fg))
							lastColor = fg
						}
					}
					builder.WriteRune(r.glyph(brightness))
				}
				if useANSI {
					builder.WriteString(resetANSI)
				}
				lines[y] = builder.String()
			}
		}()
	}

	for y := 0; y < height; y++ {
		rowJobs <- y
	}
	close(rowJobs)
	wg.Wait()

	if r.showUI {
		for i, line := range Overlay(st, width) {
			if i >= len(lines) {
				break
			}
			lines[i] = line
		}
	}

	return Frame{
		Lines:  lines,
		Status: status,
	}
}

func (r *Renderer) shade(vx, vy float64, fn sceneFunc, p *Params, post *Post, t float64) (float64, colorful.Color) {
	vx, vy = post.Warp(vx, vy)
	s := fn(vx, vy, p, t)
	brightness := clamp01((clampFloat(s.level, -1, 1) + 1) * 0.5)
	return brightness, post.Tint(r.colors.Pick(s.pick))
}

func (r *Renderer) glyph(brightness float64) rune {
	index := clampInt(int(brightness*float64(len(r.glyphs)-1)+0.5), 0, len(r.glyphs)-1)
	return r.glyphs[index]
}

// Overlay formats the debug panel: tempo, one meter per channel with its
// active mode (a trailing * marks a queued switch) and the mode legend.
func Overlay(st State, width int) []string {
	lines := make([]string, 0, len(st.Values)+3)
	lines = append(lines, fmt.Sprintf("BPM %6.2f  div %-6s  count %8.2f  scene %d/%d %s  taps %d",
		st.BPM, st.Division, st.Count, wrap(st.Scene, len(scenes))+1, len(scenes), SceneName(st.Scene), st.Taps))

	const meter = 20
	for i, v := range st.Values {
		filled := clampInt(int(math.Round(clamp01(v)*meter)), 0, meter)
		mode := ""
		if i < len(st.Modes) {
			mode = st.Modes[i]
		}
		mark := ""
		if i < len(st.Pending) && st.Pending[i] {
			mark = " *"
		}
		lines = append(lines, fmt.Sprintf("ch%d [%s%s] %.3f %s%s",
			i+1, strings.Repeat("#", filled), strings.Repeat(" ", meter-filled), v, mode, mark))
	}

	if len(st.ModeNames) > 0 {
		var b strings.Builder
		b.WriteString("modes:")
		for i, name := range st.ModeNames {
			b.WriteString(" ")
			b.WriteString(strconv.Itoa(i))
			b.WriteString("=")
			b.WriteString(name)
		}
		lines = append(lines, b.String())
	}

	for i, line := range lines {
		lines[i] = fitWidth(line, width)
	}
	return lines
}

func fitWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if len(text) >= width {
		return text[:width]
	}
	return text + strings.Repeat(" ", width-len(text))
}

func (r *Renderer) buildStatus(st State) string {
	builder := &r.statusBuilder
	builder.Reset()
	builder.Grow(128)
	builder.WriteString(strings.ToUpper(SceneName(st.Scene)))
	builder.WriteString(" | bpm ")
	appendFloat(builder, st.BPM, 1)
	builder.WriteString(" div ")
	builder.WriteString(st.Division)
	builder.WriteString(" beat ")
	appendFloat(builder, st.Count, 2)
	builder.WriteString(" | colors ")
	builder.WriteString(strconv.Itoa(len(r.colors.active)))
	builder.WriteString("/")
	builder.WriteString(strconv.Itoa(r.colors.Len()))
	builder.WriteString(" fps ")
	appendFloat(builder, st.FPS, 1)
	return builder.String()
}

func colorCode(index int) string {
	if index < 0 {
		index = 0
	} else if index >= len(precomputedANSI) {
		index = len(precomputedANSI) - 1
	}
	return precomputedANSI[index]
}

func hsvToANSI(h, s, v float64) int {
	r, g, b := hsvToRGB(h, s, v)
	return rgbToANSI(r, g, b)
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = clamp01(h)
	s = clamp01(s)
	v = clamp01(v)

	if s == 0 {
		return v, v, v
	}

	hv := h * 6.0
	i := math.Floor(hv)
	f := hv - i
	p := v * (1.0 - s)
	q := v * (1.0 - s*f)
	t := v * (1.0 - s*(1.0-f))

	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func rgbToANSI(r, g, b float64) int {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	// Grayscale palette for low saturation/contrast
	if math.Abs(r-g) < 0.02 && math.Abs(g-b) < 0.02 {
		gray := int(clampFloat(math.Round(r*23), 0, 23))
		return 232 + gray
	}

	ri := int(clampFloat(r*5+0.5, 0, 5))
	gi := int(clampFloat(g*5+0.5, 0, 5))
	bi := int(clampFloat(b*5+0.5, 0, 5))

	return 16 + 36*ri + 6*gi + bi
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

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func (r *Renderer) ensureCoordinateCache(width, height int) {
	if len(r.xCoords) != width {
		r.xCoords = make([]float64, width)
		if width > 1 {
			scale := 1.0 / float64(width)
			for x := range r.xCoords {
				r.xCoords[x] = float64(x)*scale - 0.5
			}
		}
	}
	if len(r.yCoords) != height {
		r.yCoords = make([]float64, height)
		if height > 1 {
			scale := 1.0 / float64(height)
			for y := range r.yCoords {
				r.yCoords[y] = float64(y)*scale - 0.5
			}
		}
	}
}

func appendFloat(builder *strings.Builder, value float64, precision int) {
	var buf [32]byte
	b := strconv.AppendFloat(buf[:0], value, 'f', precision, 64)
	builder.Write(b)
}
