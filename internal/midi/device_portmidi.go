//go:build midi

package midi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rakyll/portmidi"
)

// Supported reports whether the binary was built with PortMidi.
const Supported = true

// Device is an opened controller with an input stream and, when the
// controller exposes one, an output stream for LED feedback.
type Device struct {
	Name string

	in  *portmidi.Stream
	out *portmidi.Stream
}

// Open initialises PortMidi and opens the first device whose name contains
// name (case-insensitive). An empty name selects the default input.
func Open(name string) (*Device, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("portmidi init: %w", err)
	}

	inID, outID := portmidi.DefaultInputDeviceID(), portmidi.DeviceID(-1)
	devName := ""
	if name != "" {
		inID = -1
		needle := strings.ToLower(name)
		for i := 0; i < portmidi.CountDevices(); i++ {
			info := portmidi.Info(portmidi.DeviceID(i))
			if info == nil || !strings.Contains(strings.ToLower(info.Name), needle) {
				continue
			}
			if info.IsInputAvailable && inID < 0 {
				inID = portmidi.DeviceID(i)
				devName = info.Name
			}
			if info.IsOutputAvailable && outID < 0 {
				outID = portmidi.DeviceID(i)
			}
		}
	}
	if inID < 0 {
		portmidi.Terminate()
		return nil, fmt.Errorf("no MIDI input matching %q", name)
	}
	if devName == "" {
		if info := portmidi.Info(inID); info != nil {
			devName = info.Name
		}
	}

	in, err := portmidi.NewInputStream(inID, 1024)
	if err != nil {
		portmidi.Terminate()
		return nil, fmt.Errorf("open MIDI input %q: %w", devName, err)
	}
	d := &Device{Name: devName, in: in}

	if outID >= 0 {
		out, err := portmidi.NewOutputStream(outID, 1024, 0)
		if err == nil {
			d.out = out
		}
	}
	return d, nil
}

// Listen forwards incoming messages to out until ctx is cancelled or the
// stream fails.
func (d *Device) Listen(ctx context.Context, out chan<- Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		ready, err := d.in.Poll()
		if err != nil {
			return fmt.Errorf("poll MIDI input: %w", err)
		}
		if !ready {
			time.Sleep(2 * time.Millisecond)
			continue
		}

		events, err := d.in.Read(1024)
		if err != nil {
			return fmt.Errorf("read MIDI input: %w", err)
		}
		for _, ev := range events {
			select {
			case out <- Message{Status: ev.Status, Data1: ev.Data1, Data2: ev.Data2}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Send writes msgs to the output stream. It is a no-op without one.
func (d *Device) Send(msgs []Message) error {
	if d.out == nil {
		return nil
	}
	for _, m := range msgs {
		if err := d.out.WriteShort(m.Status, m.Data1, m.Data2); err != nil {
			return fmt.Errorf("write MIDI: %w", err)
		}
	}
	return nil
}

// Close releases both streams and terminates PortMidi.
func (d *Device) Close() error {
	if d.out != nil {
		d.out.Close()
	}
	err := d.in.Close()
	portmidi.Terminate()
	return err
}
