package midiwindows

import (
	"errors"
	"fmt"
)

var (
	ErrSysExUnsupported  = errors.New("system exclusive messages are not supported")
	ErrRunningStatus     = errors.New("data byte without status byte")
	ErrIncompleteMessage = errors.New("incomplete MIDI message")
)

// messageLength returns the length in bytes of the message started by status.
func messageLength(status byte) int {
	switch {
	case status < 0x80:
		return 0
	case status < 0xC0, status >= 0xE0 && status < 0xF0:
		return 3
	case status < 0xE0:
		return 2
	case status == 0xF1, status == 0xF3:
		return 2
	case status == 0xF2:
		return 3
	default:
		return 1
	}
}

// packShortMessages splits b into WinMM short messages: status in the low
// byte, then the data bytes.
func packShortMessages(b []byte) ([]uint32, error) {
	var msgs []uint32
	for i := 0; i < len(b); {
		status := b[i]
		if status == 0xF0 {
			return nil, ErrSysExUnsupported
		}
		n := messageLength(status)
		if n == 0 {
			return nil, fmt.Errorf("%w: 0x%02X at offset %d", ErrRunningStatus, status, i)
		}
		if i+n > len(b) {
			return nil, fmt.Errorf("%w: status 0x%02X needs %d bytes", ErrIncompleteMessage, status, n)
		}
		var msg uint32
		for j := n - 1; j >= 0; j-- {
			msg = msg<<8 | uint32(b[i+j])
		}
		msgs = append(msgs, msg)
		i += n
	}
	return msgs, nil
}

// unpackShortMessage is the inverse of packShortMessages for one message
// received in MIM_DATA's first parameter.
func unpackShortMessage(param uint32) []byte {
	status := byte(param)
	n := messageLength(status)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(param >> (8 * i))
	}
	return out
}
