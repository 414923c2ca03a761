package portname

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Address
	}{
		{"hw:1", Address{Card: "1", Device: 0, Subdevice: AnySubdevice}},
		{"hw:1,2", Address{Card: "1", Device: 2, Subdevice: AnySubdevice}},
		{"hw:1,2,3", Address{Card: "1", Device: 2, Subdevice: 3}},
		{"hw:USB,0,0", Address{Card: "USB", Device: 0, Subdevice: 0}},
		{"hw:CARD=1,DEV=0,SUBDEV=4", Address{Card: "1", Device: 0, Subdevice: 4}},
		{"hw:CARD=UM1,SUBDEV=1", Address{Card: "UM1", Device: 0, Subdevice: 1}},
		{"hw:2,DEV=1", Address{Card: "2", Device: 1, Subdevice: AnySubdevice}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, name := range []string{
		"",
		"missingport",
		"plughw:0,0",
		"hw:",
		"hw:,0",
		"hw:0,x",
		"hw:0,0,-2",
		"hw:0,0,0,0",
		"hw:0,,0",
		"hw:CARD=0,CARD=1",
		"hw:PORT=1",
		"hw:DEV=1",
	} {
		if _, err := Parse(name); !errors.Is(err, ErrInvalidPortName) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidPortName", name, err)
		}
	}
}

func TestAddressCardIndex(t *testing.T) {
	if n, ok := (Address{Card: "3"}).CardIndex(); !ok || n != 3 {
		t.Errorf("CardIndex of \"3\" = %d, %v", n, ok)
	}
	if _, ok := (Address{Card: "USB"}).CardIndex(); ok {
		t.Error("CardIndex of a card id reported an index")
	}
}

func TestAddressString(t *testing.T) {
	if got := (Address{Card: "1", Device: 2, Subdevice: 3}).String(); got != "hw:1,2,3" {
		t.Errorf("String = %s", got)
	}
	if got := (Address{Card: "1", Device: 2, Subdevice: AnySubdevice}).String(); got != "hw:1,2" {
		t.Errorf("String = %s", got)
	}
}
