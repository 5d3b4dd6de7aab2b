package easing

import (
	"math"
	"sort"
	"strings"
)

// Func shapes a progress value in [0,1] into [0,1].
type Func func(x float64) float64

const (
	c1 = 1.70158
	c2 = c1 * 1.525
	c3 = c1 + 1
)

func Linear(x float64) float64 { return x }

func InSine(x float64) float64    { return 1 - math.Cos(x*math.Pi/2) }
func OutSine(x float64) float64   { return math.Sin(x * math.Pi / 2) }
func InOutSine(x float64) float64 { return -(math.Cos(math.Pi*x) - 1) / 2 }

func InQuad(x float64) float64  { return x * x }
func OutQuad(x float64) float64 { return 1 - (1-x)*(1-x) }
func InOutQuad(x float64) float64 {
	if x < 0.5 {
		return 2 * x * x
	}
	return 1 - math.Pow(-2*x+2, 2)/2
}

func InCubic(x float64) float64  { return x * x * x }
func OutCubic(x float64) float64 { return 1 - math.Pow(1-x, 3) }
func InOutCubic(x float64) float64 {
	if x < 0.5 {
		return 4 * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 3)/2
}

func InQuart(x float64) float64  { return x * x * x * x }
func OutQuart(x float64) float64 { return 1 - math.Pow(1-x, 4) }
func InOutQuart(x float64) float64 {
	if x < 0.5 {
		return 8 * x * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 4)/2
}

func InQuint(x float64) float64  { return x * x * x * x * x }
func OutQuint(x float64) float64 { return 1 - math.Pow(1-x, 5) }
func InOutQuint(x float64) float64 {
	if x < 0.5 {
		return 16 * x * x * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 5)/2
}

func InExpo(x float64) float64 {
	if x == 0 {
		return 0
	}
	return math.Pow(2, 10*x-10)
}

func OutExpo(x float64) float64 {
	if x == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*x)
}

func InOutExpo(x float64) float64 {
	switch {
	case x == 0:
		return 0
	case x == 1:
		return 1
	case x < 0.5:
		return math.Pow(2, 20*x-10) / 2
	default:
		return (2 - math.Pow(2, -20*x+10)) / 2
	}
}

func InCirc(x float64) float64  { return 1 - math.Sqrt(1-x*x) }
func OutCirc(x float64) float64 { return math.Sqrt(1 - (x-1)*(x-1)) }
func InOutCirc(x float64) float64 {
	if x < 0.5 {
		return (1 - math.Sqrt(1-math.Pow(2*x, 2))) / 2
	}
	return (math.Sqrt(1-math.Pow(-2*x+2, 2)) + 1) / 2
}

// OutBack overshoots past 1 before settling.
func OutBack(x float64) float64 {
	return 1 + c3*math.Pow(x-1, 3) + c1*math.Pow(x-1, 2)
}

// InOutBack undershoots below 0 and overshoots past 1.
func InOutBack(x float64) float64 {
	if x < 0.5 {
		return (math.Pow(2*x, 2) * ((c2+1)*2*x - c2)) / 2
	}
	return (math.Pow(2*x-2, 2)*((c2+1)*(x*2-2)+c2) + 2) / 2
}

// ClampInOutCubic is flat at 0 below 0.1 and at 1 above 0.9, with a cubic
// in-out ramp across the window between.
func ClampInOutCubic(x float64) float64 {
	if x <= 0.1 {
		return 0
	}
	if x >= 0.9 {
		return 1
	}
	return InOutCubic((x - 0.1) / 0.8)
}

var registry = map[string]Func{
	"linear":          Linear,
	"insine":          InSine,
	"outsine":         OutSine,
	"inoutsine":       InOutSine,
	"inquad":          InQuad,
	"outquad":         OutQuad,
	"inoutquad":       InOutQuad,
	"incubic":         InCubic,
	"outcubic":        OutCubic,
	"inoutcubic":      InOutCubic,
	"inquart":         InQuart,
	"outquart":        OutQuart,
	"inoutquart":      InOutQuart,
	"inquint":         InQuint,
	"outquint":        OutQuint,
	"inoutquint":      InOutQuint,
	"inexpo":          InExpo,
	"outexpo":         OutExpo,
	"inoutexpo":       InOutExpo,
	"incirc":          InCirc,
	"outcirc":         OutCirc,
	"inoutcirc":       InOutCirc,
	"outback":         OutBack,
	"inoutback":       InOutBack,
	"clampinoutcubic": ClampInOutCubic,
}

// Lookup resolves a curve by name. Matching ignores case, dashes and an
// "ease" prefix, so "easeInOutSine" and "in-out-sine" both resolve.
func Lookup(name string) (Func, bool) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	key = strings.TrimPrefix(key, "ease")
	fn, ok := registry[key]
	return fn, ok
}

// Names returns the registered curve names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
