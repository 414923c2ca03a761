package contracts

import "errors"

// ErrPortClosed is returned by port operations after Close.
var ErrPortClosed = errors.New("port closed")

// Driver is the host audio driver's control and raw MIDI interface.
// All calls block until the driver answers.
type Driver interface {
	// NextCard returns the index of the card following card, or NoIndex when
	// there is none. Passing NoIndex returns the first card.
	NextCard(card int) (int, error)
	// OpenControl opens the control interface of a card.
	OpenControl(card int) (Control, error)
	// OpenInput opens a raw MIDI input stream by its driver-defined name.
	OpenInput(name string) (InputPort, error)
	// OpenOutput opens a raw MIDI output stream by its driver-defined name.
	OpenOutput(name string) (OutputPort, error)
	// Describe returns the driver's human-readable text for an error it returned.
	Describe(err error) string
	// Release frees process-wide state the driver cached across calls.
	Release() error
}

// Control is an open card control interface.
type Control interface {
	// CardInfo queries the card's identification.
	CardInfo() (CardInfo, error)
	// NextRawMIDIDevice returns the raw MIDI device following device on this
	// card, or NoIndex when there is none.
	NextRawMIDIDevice(device int) (int, error)
	// RawMIDIInfo queries one sub-device of a device in the given direction.
	RawMIDIInfo(device, subdevice int, stream Stream) (RawMIDIInfo, error)
	Close() error
}

// InputPort is an open raw MIDI input stream. Close may be called more than
// once and from another goroutine to unblock a pending Read.
type InputPort interface {
	Read(p []byte) (int, error)
	Close() error
}

// OutputPort is an open raw MIDI output stream.
type OutputPort interface {
	Write(p []byte) (int, error)
	// Drain blocks until queued bytes have been transmitted.
	Drain() error
	Close() error
}
