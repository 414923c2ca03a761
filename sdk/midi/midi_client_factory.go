package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/rawmidi/internal/midi/midialsa"
	"github.com/leandrodaf/rawmidi/internal/midi/mididarwin"
	"github.com/leandrodaf/rawmidi/internal/midi/midiwindows"
	"github.com/leandrodaf/rawmidi/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no raw MIDI driver.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// driverInitializers maps OS names to corresponding driver initializers.
var driverInitializers = map[string]func(*contracts.ClientOptions) (contracts.Driver, error){
	"linux":   midialsa.NewDriver,    // ALSA raw MIDI through /dev/snd.
	"darwin":  mididarwin.NewDriver,  // macOS (Darwin) CoreMIDI.
	"windows": midiwindows.NewDriver, // Windows multimedia MIDI.
}

// NewDriver initializes the host driver for the current operating system.
//
// opts *contracts.ClientOptions: Configuration options, with defaults already applied.
//
// Returns:
//   - contracts.Driver: The driver for runtime.GOOS.
//   - error: ErrUnsupportedOS, or the driver's own initialization error.
func NewDriver(opts *contracts.ClientOptions) (contracts.Driver, error) {
	return newDriverFor(runtime.GOOS, opts)
}

func newDriverFor(goos string, opts *contracts.ClientOptions) (contracts.Driver, error) {
	if initializer, exists := driverInitializers[goos]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
}
