//go:build audio

package metronome

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

type speakerPlayer struct{}

func (speakerPlayer) Play(s beep.Streamer) { speaker.Play(s) }

// NewSpeaker initialises the default audio output at rate.
func NewSpeaker(rate beep.SampleRate) (Player, error) {
	if err := speaker.Init(rate, rate.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return speakerPlayer{}, nil
}

// CloseSpeaker stops audio output.
func CloseSpeaker() { speaker.Close() }
