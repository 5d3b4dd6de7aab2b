package motion

import "math"

// Mode selects the waveform a channel produces.
type Mode int

const (
	ModeZero Mode = iota
	ModeOne
	ModePulse
	ModeZigzag
	ModeSine
	ModeFourStep
	ModeRandomEase
	ModeHoldNoise
	modeCount
)

var modeNames = [...]string{
	ModeZero:       "Zero",
	ModeOne:        "One",
	ModePulse:      "Pulse",
	ModeZigzag:     "Zigzag",
	ModeSine:       "Sine",
	ModeFourStep:   "FourStep",
	ModeRandomEase: "RandomEase",
	ModeHoldNoise:  "HoldNoise",
}

func (m Mode) String() string {
	if m < 0 || m >= modeCount {
		return "Unknown"
	}
	return modeNames[m]
}

// ModeCount is the number of selectable modes.
const ModeCount = int(modeCount)

// ModeNames lists mode labels in selection order.
func ModeNames() []string {
	out := make([]string, len(modeNames))
	copy(out, modeNames[:])
	return out
}

// ClampMode converts an arbitrary index into a valid Mode.
func ClampMode(i int) Mode {
	if i < 0 {
		return ModeZero
	}
	if i >= ModeCount {
		return modeCount - 1
	}
	return Mode(i)
}

func pulse(phase float64) float64 {
	x := phase * 0.5
	return x - math.Floor(x)
}

func zigzag(phase float64) float64 {
	return math.Mod(math.Floor(phase*0.5), 2)
}

func sine(phase float64) float64 {
	return (math.Sin(phase*0.5*math.Pi) + 1) / 2
}

func fourStep(phase float64) float64 {
	return math.Floor(math.Mod(phase, 4)) / 4
}
