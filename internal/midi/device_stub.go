//go:build !midi

package midi

import (
	"context"
	"errors"
)

// Supported reports whether the binary was built with PortMidi.
const Supported = false

// ErrUnsupported is returned by Open when MIDI support is not compiled in.
var ErrUnsupported = errors.New("midi support not built; rebuild with -tags midi")

// Device is unavailable without the midi build tag.
type Device struct {
	Name string
}

// Open always fails without the midi build tag.
func Open(string) (*Device, error) {
	return nil, ErrUnsupported
}

// Listen returns immediately.
func (d *Device) Listen(context.Context, chan<- Message) error { return ErrUnsupported }

// Send does nothing.
func (d *Device) Send([]Message) error { return nil }

// Close does nothing.
func (d *Device) Close() error { return nil }
