// Package metronome plays an audible click on every beat of the tempo.
package metronome

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// SampleRate is the output rate used for clicks.
const SampleRate = beep.SampleRate(44100)

const (
	clickLength = 30 * time.Millisecond
	clickFreq   = 1000.0
	accentFreq  = 1600.0
	clickGain   = 0.6
	accentEvery = 4
)

// Click returns a short exponentially decaying sine burst. Accented clicks
// are pitched higher.
func Click(rate beep.SampleRate, accent bool) beep.Streamer {
	freq := clickFreq
	if accent {
		freq = accentFreq
	}
	total := rate.N(clickLength)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= total {
			return 0, false
		}
		for i := range samples {
			if pos >= total {
				break
			}
			t := float64(pos) / float64(rate)
			env := math.Exp(-float64(pos) / float64(total) * 6)
			v := clickGain * env * math.Sin(2*math.Pi*freq*t)
			samples[i][0] = v
			samples[i][1] = v
			pos++
			n++
		}
		return n, true
	})
}

// Player plays a streamer asynchronously.
type Player interface {
	Play(s beep.Streamer)
}

// Metronome emits one click per new beat index.
type Metronome struct {
	player   Player
	rate     beep.SampleRate
	lastBeat int64
	started  bool
}

// New returns a Metronome writing to player.
func New(player Player, rate beep.SampleRate) *Metronome {
	if rate <= 0 {
		rate = SampleRate
	}
	return &Metronome{player: player, rate: rate}
}

// Tick plays a click when beat differs from the last observed beat. Every
// fourth beat is accented. It reports whether a click was played.
func (m *Metronome) Tick(beat int64) bool {
	if m.player == nil {
		return false
	}
	if m.started && beat == m.lastBeat {
		return false
	}
	m.started = true
	m.lastBeat = beat
	m.player.Play(Click(m.rate, beat%accentEvery == 0))
	return true
}
