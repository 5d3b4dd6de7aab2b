package midi

import (
	"math"

	"github.com/guidoenr/beatviz/internal/gvm"
)

const (
	statusNoteOn  = 0x90
	statusNoteOff = 0x80
	statusCC      = 0xB0

	gridSize        = 8
	faderCount      = 9
	faderButtonBase = 100
	faderButtonLast = 107
	masterButton    = 122
	sideButtonBase  = 112
	sideButtonLast  = 119
	faderCCBase     = 48
	faderCCLast     = 56
	divisionFader   = 8
)

// Control identifies which part of the surface a message changed.
type Control int

const (
	ControlNone Control = iota
	ControlGrid
	ControlScene
	ControlFader
	ControlDivision
)

// Message is a short MIDI message.
type Message struct {
	Status int64
	Data1  int64
	Data2  int64
}

// APCMini tracks the surface state of an Akai APC mini mk2: an 8x8 grid used
// as one radio column per channel, nine faders with toggle buttons, and a
// radio row of side buttons.
type APCMini struct {
	grid          [gridSize]int
	faders        [faderCount]float64
	faderPrev     [faderCount]float64
	faderToggle   [faderCount]bool
	sideToggle    [gridSize]bool
	sideRadio     int
	divisionTouch bool
}

// NewAPCMini returns a surface with every grid column on row 0.
func NewAPCMini() *APCMini {
	a := &APCMini{}
	for i := range a.faderPrev {
		a.faderPrev[i] = 1
	}
	return a
}

// Handle applies one incoming message and reports which control changed.
func (a *APCMini) Handle(msg Message) Control {
	note := msg.Data1
	velocity := msg.Data2

	if msg.Status == statusNoteOn {
		switch {
		case (note >= faderButtonBase && note <= faderButtonLast) || note == masterButton:
			idx := divisionFader
			if note != masterButton {
				idx = int(note - faderButtonBase)
			}
			if velocity > 0 {
				a.faderToggle[idx] = !a.faderToggle[idx]
				return a.updateFader(idx)
			}
			return ControlNone
		case note >= sideButtonBase && note <= sideButtonLast:
			if velocity > 0 {
				idx := int(note - sideButtonBase)
				a.sideToggle[idx] = !a.sideToggle[idx]
				a.sideRadio = idx
				return ControlScene
			}
			return ControlNone
		}
	}

	if (msg.Status == statusNoteOn || msg.Status == statusNoteOff) && note >= 0 && note < gridSize*gridSize {
		if velocity <= 0 {
			return ControlNone
		}
		row := gridSize - 1 - int(note/gridSize)
		col := int(note % gridSize)
		a.grid[col] = row
		return ControlGrid
	}

	if msg.Status == statusCC && note >= faderCCBase && note <= faderCCLast {
		idx := int(note - faderCCBase)
		a.faderPrev[idx] = float64(velocity) / 127
		return a.updateFader(idx)
	}
	return ControlNone
}

func (a *APCMini) updateFader(idx int) Control {
	if a.faderToggle[idx] {
		a.faders[idx] = 1
	} else {
		a.faders[idx] = a.faderPrev[idx]
	}
	if idx == divisionFader {
		a.divisionTouch = true
		return ControlDivision
	}
	return ControlFader
}

// Grid returns the selected row of every column.
func (a *APCMini) Grid() [gridSize]int { return a.grid }

// Faders returns the eight channel faders in [0,1]. The master fader is
// read through Division.
func (a *APCMini) Faders() [gridSize]float64 {
	var out [gridSize]float64
	copy(out[:], a.faders[:gridSize])
	return out
}

// SceneRadio returns the index of the last pressed side button.
func (a *APCMini) SceneRadio() int { return a.sideRadio }

// Division reads the beat division from the master fader: fully down is half
// time, fully up (or its toggle latched) is double time. ok is false until
// the master fader or its button has been used.
func (a *APCMini) Division() (d gvm.Division, ok bool) {
	if !a.divisionTouch {
		return gvm.DivisionNormal, false
	}
	switch a.faders[divisionFader] {
	case 0:
		return gvm.DivisionHalf, true
	case 1:
		return gvm.DivisionDouble, true
	default:
		return gvm.DivisionNormal, true
	}
}

// Feedback builds the LED and fader messages mirroring the current state.
func (a *APCMini) Feedback() []Message {
	out := make([]Message, 0, faderCount+gridSize+gridSize*gridSize+faderCount)
	for i, on := range a.faderToggle {
		note := int64(faderButtonBase + i)
		if i == divisionFader {
			note = masterButton
		}
		out = append(out, Message{Status: statusNoteOn, Data1: note, Data2: boolVelocity(on, 127)})
	}
	for i := 0; i < gridSize; i++ {
		out = append(out, Message{Status: statusNoteOn, Data1: int64(sideButtonBase + i), Data2: boolVelocity(a.sideRadio == i, 127)})
	}
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			index := int64(col + (gridSize-1-row)*gridSize)
			out = append(out, Message{Status: statusNoteOn, Data1: index, Data2: boolVelocity(a.grid[col] == row, 25)})
		}
	}
	for i, v := range a.faders {
		out = append(out, Message{Status: statusCC, Data1: int64(faderCCBase + i), Data2: int64(math.Round(v * 127))})
	}
	return out
}

func boolVelocity(on bool, velocity int64) int64 {
	if on {
		return velocity
	}
	return 0
}
