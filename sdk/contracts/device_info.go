package contracts

import "fmt"

// NoIndex is the "no card" / "no device" sentinel of the next-index protocols.
// Passed in, it asks for the first entry; returned, it marks the end of the list.
const NoIndex = -1

// Stream is the direction of a raw MIDI sub-device.
type Stream int

const (
	// StreamOutput selects the output (host to device) stream.
	StreamOutput Stream = iota
	// StreamInput selects the input (device to host) stream.
	StreamInput
)

func (s Stream) String() string {
	switch s {
	case StreamOutput:
		return "output"
	case StreamInput:
		return "input"
	default:
		return fmt.Sprintf("Stream(%d)", int(s))
	}
}

// CardInfo contains information about a sound card.
type CardInfo struct {
	Card     int    // Card index.
	ID       string // Short card identifier, usable in port names on ALSA.
	Driver   string // Name of the driver serving the card.
	Name     string // Display name.
	LongName string // Descriptive name.
}

// RawMIDIInfo contains information about one raw MIDI sub-device.
type RawMIDIInfo struct {
	Card            int    // Card index.
	Device          int    // Device index on the card.
	Subdevice       int    // Sub-device index on the device.
	Stream          Stream // Direction the info was queried for.
	ID              string // Device identifier.
	Name            string // Device name.
	SubName         string // Sub-device name.
	SubdevicesCount int    // Total number of sub-devices in this direction.
	SubdevicesAvail int    // Number of sub-devices not currently opened.
}

// HWPortName formats a raw MIDI sub-device address as hw:<card>,<device>,<subdevice>.
func HWPortName(card, device, subdevice int) string {
	return fmt.Sprintf("hw:%d,%d,%d", card, device, subdevice)
}
