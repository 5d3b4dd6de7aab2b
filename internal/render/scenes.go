package render

import (
	"math"
)

// Params are the channel values a scene is driven by.
type Params [8]float64

// ParamsFrom copies up to eight values; missing channels read as zero.
func ParamsFrom(values []float64) Params {
	var p Params
	copy(p[:], values)
	return p
}

// sample is a scene's output at one point: level in [-1,1] and a palette
// selector in [0,1).
type sample struct {
	level float64
	pick  float64
}

type sceneFunc func(x, y float64, p *Params, t float64) sample

type scene struct {
	name string
	fn   sceneFunc
}

var scenes = []scene{
	{"lines", sceneLines},
	{"glyphs", sceneGlyphs},
	{"plasma", scenePlasma},
	{"ripples", sceneRipples},
	{"nebula", sceneNebula},
	{"bars", sceneBars},
	{"noise", sceneNoise},
}

// AutoScene is the selector value that advances one scene per beat.
const AutoScene = 7

// SceneNames returns scene identifiers in selection order.
func SceneNames() []string {
	names := make([]string, len(scenes))
	for i, s := range scenes {
		names[i] = s.name
	}
	return names
}

// SceneCount returns the number of scenes.
func SceneCount() int { return len(scenes) }

// SceneName returns the name of scene i modulo the scene count.
func SceneName(i int) string {
	return scenes[wrap(i, len(scenes))].name
}

// SelectScene maps a selector to a scene index. The auto selector advances
// one scene per beat of count.
func SelectScene(radio int, count float64) int {
	if radio == AutoScene {
		return wrap(int(math.Floor(count)), len(scenes))
	}
	return wrap(radio, len(scenes))
}

// ParseScene resolves a scene name or "auto" to a selector value.
func ParseScene(name string) (int, bool) {
	if name == "" || name == "auto" {
		return AutoScene, true
	}
	for i, s := range scenes {
		if s.name == name {
			return i, true
		}
	}
	return 0, false
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// sceneLines draws a rotated grid of short strokes. p0 shifts the palette,
// p1 zooms, p2 sets thickness, p3 length, p4 canvas angle, p5 per-stroke
// angle, p6 spread and p7 jitter.
func sceneLines(x, y float64, p *Params, t float64) sample {
	const grid = 8.0
	angle := (p[4] - 0.5) * math.Pi
	sinA, cosA := math.Sincos(-angle)
	rx := x*cosA - y*sinA
	ry := x*sinA + y*cosA
	scale := 1 + p[1]*2
	rx /= scale
	ry /= scale

	cell := 1.0 / grid
	spread := 1 + p[6]
	rx /= spread
	ry /= spread
	cx := math.Floor(rx / cell)
	cy := math.Floor(ry / cell)
	lx := rx - (cx+0.5)*cell
	ly := ry - (cy+0.5)*cell

	lx -= (hash2(cx, cy)*2 - 1) * cell * 0.5 * p[7]
	ly -= (hash2(cy, cx)*2 - 1) * cell * 0.5 * p[7]

	strokeAngle := (p[5]-0.5)*math.Pi + hash2(cx+17, cy-3)*2*math.Pi*p[5]
	sinS, cosS := math.Sincos(-strokeAngle)
	sx := lx*cosS - ly*sinS
	sy := lx*sinS + ly*cosS

	halfLen := cell * lerp(0.2, 1.0, p[3]) * 0.5
	halfThick := cell * lerp(0.05, 0.9, p[2]) * 0.5
	pick := frac(p[0]*2 + 0.5)
	if math.Abs(sx) <= halfLen && math.Abs(sy) <= halfThick {
		return sample{level: 1, pick: pick}
	}
	return sample{level: -0.7, pick: frac(p[0] * 2)}
}

// sceneGlyphs scrolls a grid of blocks downward; p1 zooms, p2 sets block
// size and p3 shifts columns.
func sceneGlyphs(x, y float64, p *Params, t float64) sample {
	const grid = 8.0
	scale := 1 + p[1]*2
	cell := 1.0 / grid / scale
	ox := p[3] * cell
	oy := frac(t*0.5) * cell
	gx := (x - ox) / cell
	gy := (y - oy) / cell
	cx := math.Floor(gx)
	cy := math.Floor(gy)
	dx := gx - cx - 0.5
	dy := gy - cy - 0.5
	size := lerp(0.2, 1.0, p[2]) * 0.5
	pick := hash2(cx*4792, cy*1872)
	if math.Abs(dx) <= size && math.Abs(dy) <= size {
		return sample{level: 1 - math.Hypot(dx, dy), pick: pick}
	}
	return sample{level: -1, pick: pick}
}

func scenePlasma(x, y float64, p *Params, t float64) sample {
	speed := 0.5 + p[1]*1.5
	v1 := math.Sin((x*3.4 + t*1.2*speed) * (0.9 + p[0]*2))
	v2 := math.Sin((y*4.1 - t*0.7*speed) * 1.1)
	v3 := math.Sin((x+y)*2.3 + t*1.7*speed)
	v := (v1 + v2 + v3) / 3.0
	return sample{level: v, pick: clamp01((v + 1) * 0.5)}
}

func sceneRipples(x, y float64, p *Params, t float64) sample {
	r := math.Hypot(x, y)
	theta := math.Atan2(y, x)
	freq := 8 + p[2]*24
	v := math.Sin(r*freq - t*2.2 + math.Sin(theta*3+t)*p[3]*2)
	return sample{level: v, pick: frac(r*2 + p[0])}
}

func sceneNebula(x, y float64, p *Params, t float64) sample {
	base := scenePlasma(x*0.8, y*0.8, p, t).level
	swirl := math.Sin((x-y)*1.5 + t*0.9 + p[4]*math.Pi)
	noise := fractalNoise(x*1.2+t*0.1, y*1.2-t*0.15)
	v := clampFloat(base*0.6+swirl*0.2+noise*0.6*(0.5+p[5]), -1, 1)
	return sample{level: v, pick: clamp01((noise + 1) * 0.5)}
}

// sceneBars shows every channel as a vertical bar.
func sceneBars(x, y float64, p *Params, t float64) sample {
	col := int(math.Floor((x + 0.5) * float64(len(p))))
	if col < 0 {
		col = 0
	} else if col >= len(p) {
		col = len(p) - 1
	}
	height := 0.5 - y
	pick := float64(col) / float64(len(p))
	if height <= p[col] {
		return sample{level: 1, pick: pick}
	}
	return sample{level: -1, pick: pick}
}

func sceneNoise(x, y float64, p *Params, t float64) sample {
	scale := 2 + p[7]*10
	v := fractalNoise((x+p[6])*scale+t*0.2, (y-p[6])*scale-t*0.18)
	return sample{level: v, pick: clamp01((v + 1) * 0.5)}
}

func fractalNoise(x, y float64) float64 {
	amp := 0.5
	freq := 1.0
	total := 0.0
	sumAmp := 0.0

	for i := 0; i < 4; i++ {
		total += valueNoise2(x*freq, y*freq) * amp
		sumAmp += amp
		amp *= 0.5
		freq *= 2.0
	}

	if sumAmp == 0 {
		return 0
	}
	return (total/sumAmp)*2.0 - 1.0
}

func valueNoise2(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	x1 := x0 + 1.0
	y1 := y0 + 1.0

	sx := smoothstep(x - x0)
	sy := smoothstep(y - y0)

	ix0 := lerp(hash2(x0, y0), hash2(x1, y0), sx)
	ix1 := lerp(hash2(x0, y1), hash2(x1, y1), sx)

	return lerp(ix0, ix1, sy)
}

func hash2(x, y float64) float64 {
	return frac(math.Sin(x*127.1+y*311.7) * 43758.5453123)
}

func smoothstep(v float64) float64 {
	return v * v * (3 - 2*v)
}

func frac(v float64) float64 {
	return v - math.Floor(v)
}
