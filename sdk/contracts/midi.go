package contracts

import "context"

// ClientMIDI defines the diagnostic operations offered on top of a Driver.
// Every operation reports its failures as console text and never returns them.
type ClientMIDI interface {
	ListCards()                                          // Prints every card with its raw MIDI sub-devices.
	PrintMIDIToConsole(ctx context.Context, name string) // Prints bytes received on input port name until an error or ctx is done.
	PlayTestSound(name string)                           // Plays a short arpeggio on output port name.
}
