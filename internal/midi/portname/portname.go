// Package portname parses the hw:<card>,<device>,<subdevice> names used to
// address raw MIDI sub-devices.
package portname

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPortName is returned for names that are not hw: port names.
var ErrInvalidPortName = errors.New("invalid port name")

// AnySubdevice lets the driver pick the first free sub-device.
const AnySubdevice = -1

// Address is a parsed port name.
type Address struct {
	Card      string // Card index, or card id when not numeric.
	Device    int
	Subdevice int // AnySubdevice when the name does not pin one.
}

// CardIndex returns the card as an index when it was given numerically.
func (a Address) CardIndex() (int, bool) {
	n, err := strconv.Atoi(a.Card)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (a Address) String() string {
	if a.Subdevice == AnySubdevice {
		return fmt.Sprintf("hw:%s,%d", a.Card, a.Device)
	}
	return fmt.Sprintf("hw:%s,%d,%d", a.Card, a.Device, a.Subdevice)
}

var keys = [...]string{"CARD", "DEV", "SUBDEV"}

// Parse accepts hw:C, hw:C,D and hw:C,D,S, where C is a card index or id,
// and the keyword form hw:CARD=C,DEV=D,SUBDEV=S.
func Parse(name string) (Address, error) {
	rest, ok := strings.CutPrefix(name, "hw:")
	if !ok {
		return Address{}, fmt.Errorf("%w %q: expected hw: prefix", ErrInvalidPortName, name)
	}

	parts := strings.Split(rest, ",")
	if len(parts) > len(keys) {
		return Address{}, fmt.Errorf("%w %q: too many components", ErrInvalidPortName, name)
	}

	var values [len(keys)]string
	var set [len(keys)]bool
	for i, part := range parts {
		slot := i
		if key, value, found := strings.Cut(part, "="); found {
			slot = keyIndex(key)
			if slot < 0 {
				return Address{}, fmt.Errorf("%w %q: unknown key %q", ErrInvalidPortName, name, key)
			}
			part = value
		}
		if set[slot] {
			return Address{}, fmt.Errorf("%w %q: %s given twice", ErrInvalidPortName, name, keys[slot])
		}
		values[slot], set[slot] = part, true
	}

	addr := Address{Card: values[0], Subdevice: AnySubdevice}
	if addr.Card == "" {
		return Address{}, fmt.Errorf("%w %q: missing card", ErrInvalidPortName, name)
	}

	var err error
	if set[1] {
		if addr.Device, err = parseIndex(values[1]); err != nil {
			return Address{}, fmt.Errorf("%w %q: device: %v", ErrInvalidPortName, name, err)
		}
	}
	if set[2] {
		if addr.Subdevice, err = parseIndex(values[2]); err != nil {
			return Address{}, fmt.Errorf("%w %q: subdevice: %v", ErrInvalidPortName, name, err)
		}
	}
	return addr, nil
}

func keyIndex(key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	return n, nil
}
