package midiwindows

import (
	"errors"
	"reflect"
	"testing"
)

func TestMessageLength(t *testing.T) {
	tests := map[byte]int{
		0x3C: 0,
		0x80: 3,
		0x90: 3,
		0xB1: 3,
		0xC0: 2,
		0xDF: 2,
		0xE5: 3,
		0xF1: 2,
		0xF2: 3,
		0xF3: 2,
		0xF8: 1,
		0xFE: 1,
	}
	for status, want := range tests {
		if got := messageLength(status); got != want {
			t.Errorf("messageLength(0x%02X) = %d, want %d", status, got, want)
		}
	}
}

func TestPackShortMessages(t *testing.T) {
	got, err := packShortMessages([]byte{0x90, 60, 127, 0xC0, 5, 0xF8, 0x90, 60, 0})
	if err != nil {
		t.Fatalf("packShortMessages: %v", err)
	}
	want := []uint32{0x7F3C90, 0x05C0, 0xF8, 0x003C90}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("packShortMessages = %#x, want %#x", got, want)
	}
}

func TestPackShortMessagesErrors(t *testing.T) {
	tests := []struct {
		in   []byte
		want error
	}{
		{[]byte{0xF0, 0x7E, 0xF7}, ErrSysExUnsupported},
		{[]byte{60, 127}, ErrRunningStatus},
		{[]byte{0x90, 60}, ErrIncompleteMessage},
	}
	for _, tt := range tests {
		if _, err := packShortMessages(tt.in); !errors.Is(err, tt.want) {
			t.Errorf("packShortMessages(% X) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestUnpackShortMessage(t *testing.T) {
	if got := unpackShortMessage(0x7F3C90); !reflect.DeepEqual(got, []byte{0x90, 0x3C, 0x7F}) {
		t.Errorf("unpack note on = % X", got)
	}
	if got := unpackShortMessage(0x05C0); !reflect.DeepEqual(got, []byte{0xC0, 0x05}) {
		t.Errorf("unpack program change = % X", got)
	}
	if got := unpackShortMessage(0xF8); !reflect.DeepEqual(got, []byte{0xF8}) {
		t.Errorf("unpack clock = % X", got)
	}
	if got := unpackShortMessage(0x10); got != nil {
		t.Errorf("unpack data byte = % X", got)
	}
}
