//go:build !audio

package metronome

import (
	"errors"

	"github.com/gopxl/beep"
)

// ErrUnsupported is returned when the binary lacks audio output.
var ErrUnsupported = errors.New("audio output not built; rebuild with -tags audio")

// NewSpeaker fails without the audio build tag.
func NewSpeaker(beep.SampleRate) (Player, error) { return nil, ErrUnsupported }

// CloseSpeaker does nothing.
func CloseSpeaker() {}
