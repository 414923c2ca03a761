//go:build linux

// Package midialsa drives ALSA raw MIDI devices through the kernel's control
// and rawmidi ioctls, without cgo or alsa-lib.
package midialsa

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/leandrodaf/rawmidi/internal/midi/portname"
	"github.com/leandrodaf/rawmidi/sdk/contracts"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

const (
	defaultDevDir = "/dev/snd"
	maxCards      = 32 // SNDRV_CARDS
)

// ErrNoSuchCard is returned when a port name refers to an unknown card id.
var ErrNoSuchCard = errors.New("no such card")

// Driver implements contracts.Driver on /dev/snd.
type Driver struct {
	logger contracts.Logger
	devDir string

	mu      sync.Mutex
	cardIDs map[string]int // card id -> index, filled when resolving port names
}

// NewDriver creates the ALSA driver.
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Debug("ALSA raw MIDI driver created", options.Logger.Field().String("devDir", defaultDevDir))
	return newDriver(options.Logger, defaultDevDir), nil
}

func newDriver(logger contracts.Logger, devDir string) *Driver {
	return &Driver{logger: logger, devDir: devDir}
}

func (d *Driver) controlPath(card int) string {
	return filepath.Join(d.devDir, fmt.Sprintf("controlC%d", card))
}

func (d *Driver) rawmidiPath(card, device int) string {
	return filepath.Join(d.devDir, fmt.Sprintf("midiC%dD%d", card, device))
}

// NextCard probes the control nodes following card.
func (d *Driver) NextCard(card int) (int, error) {
	if card < contracts.NoIndex {
		return contracts.NoIndex, errors.Wrapf(unix.EINVAL, "next card after %d", card)
	}
	for next := card + 1; next < maxCards; next++ {
		if unix.Access(d.controlPath(next), unix.R_OK) == nil {
			return next, nil
		}
	}
	return contracts.NoIndex, nil
}

// OpenControl opens /dev/snd/controlC<card>.
func (d *Driver) OpenControl(card int) (contracts.Control, error) {
	return d.openControl(card)
}

func (d *Driver) openControl(card int) (*control, error) {
	path := d.controlPath(card)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if errors.Is(err, unix.EACCES) {
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	d.logger.Debug("Card control opened", d.logger.Field().Int("card", card))
	return &control{fd: fd, card: card}, nil
}

// OpenInput opens a raw MIDI input stream.
func (d *Driver) OpenInput(name string) (contracts.InputPort, error) {
	f, err := d.openStream(name, rawmidiStreamInput)
	if err != nil {
		return nil, err
	}
	return &port{file: f, name: name}, nil
}

// OpenOutput opens a raw MIDI output stream.
func (d *Driver) OpenOutput(name string) (contracts.OutputPort, error) {
	f, err := d.openStream(name, rawmidiStreamOutput)
	if err != nil {
		return nil, err
	}
	return &port{file: f, name: name}, nil
}

// openStream follows alsa-lib's hw open: the sub-device preference is set on
// the card control, which must stay open until the rawmidi node is opened.
func (d *Driver) openStream(name string, stream int32) (*os.File, error) {
	addr, err := portname.Parse(name)
	if err != nil {
		return nil, err
	}
	card, err := d.resolveCard(addr)
	if err != nil {
		return nil, err
	}
	ctl, err := d.openControl(card)
	if err != nil {
		return nil, err
	}

	f, err := d.openRawmidi(ctl, addr, card, stream)
	if cerr := ctl.Close(); cerr != nil {
		if err != nil {
			return nil, multierr.Append(err, cerr)
		}
		d.logger.Warn("Failed to close card control", d.logger.Field().Int("card", card), d.logger.Field().Error("error", cerr))
	}
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Raw MIDI stream opened",
		d.logger.Field().String("port", name),
		d.logger.Field().String("address", addr.String()),
		d.logger.Field().String("node", f.Name()),
		d.logger.Field().Bool("input", stream == rawmidiStreamInput))
	return f, nil
}

func (d *Driver) openRawmidi(ctl *control, addr portname.Address, card int, stream int32) (*os.File, error) {
	if err := ctl.preferSubdevice(addr.Subdevice); err != nil {
		return nil, err
	}

	mode := unix.O_RDONLY
	if stream == rawmidiStreamOutput {
		mode = unix.O_WRONLY
	}
	// Non-blocking so the runtime poller owns the descriptor and Close can
	// interrupt a pending Read.
	path := d.rawmidiPath(card, addr.Device)
	fd, err := unix.Open(path, mode|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	if addr.Subdevice != portname.AnySubdevice {
		var info sndRawmidiInfo
		if err := ioctl(uintptr(fd), rawmidiIoctlInfo, unsafe.Pointer(&info)); err != nil {
			unix.Close(fd)
			return nil, errors.Wrapf(err, "info %s", path)
		}
		if int(info.Subdevice) != addr.Subdevice {
			unix.Close(fd)
			return nil, errors.Wrapf(unix.EBUSY, "%s opened subdevice %d instead of %d", path, info.Subdevice, addr.Subdevice)
		}
	}
	return os.NewFile(uintptr(fd), path), nil
}

// resolveCard maps a numeric card or a card id to its index.
func (d *Driver) resolveCard(addr portname.Address) (int, error) {
	if n, ok := addr.CardIndex(); ok {
		return n, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.cardIDs[addr.Card]; ok {
		return n, nil
	}
	if d.cardIDs == nil {
		d.cardIDs = make(map[string]int)
	}

	card := contracts.NoIndex
	for {
		var err error
		if card, err = d.NextCard(card); err != nil {
			return 0, err
		}
		if card == contracts.NoIndex {
			break
		}
		ctl, err := d.openControl(card)
		if err != nil {
			continue
		}
		info, err := ctl.CardInfo()
		ctl.Close()
		if err != nil {
			continue
		}
		d.cardIDs[info.ID] = card
		if info.ID == addr.Card {
			return card, nil
		}
	}
	return 0, errors.Wrapf(ErrNoSuchCard, "card id %q", addr.Card)
}

// Release drops the card id cache.
func (d *Driver) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cardIDs = nil
	return nil
}

// Describe returns the errno text in the capitalized form of strerror(3).
func (d *Driver) Describe(err error) string {
	if err == nil {
		return ""
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		msg := errno.Error()
		if msg == "" {
			return "errno " + strconv.Itoa(int(errno))
		}
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
	return errors.Cause(err).Error()
}

type control struct {
	fd   int
	card int

	closeOnce sync.Once
	closeErr  error
}

func (c *control) CardInfo() (contracts.CardInfo, error) {
	var info sndCtlCardInfo
	if err := ioctl(uintptr(c.fd), ctlIoctlCardInfo, unsafe.Pointer(&info)); err != nil {
		return contracts.CardInfo{}, errors.Wrapf(err, "card %d info", c.card)
	}
	return contracts.CardInfo{
		Card:     int(info.Card),
		ID:       cString(info.ID[:]),
		Driver:   cString(info.Driver[:]),
		Name:     cString(info.Name[:]),
		LongName: cString(info.LongName[:]),
	}, nil
}

func (c *control) NextRawMIDIDevice(device int) (int, error) {
	next := int32(device)
	if err := ioctl(uintptr(c.fd), ctlIoctlRawmidiNextDevice, unsafe.Pointer(&next)); err != nil {
		return contracts.NoIndex, errors.Wrapf(err, "card %d next rawmidi device after %d", c.card, device)
	}
	return int(next), nil
}

func (c *control) RawMIDIInfo(device, subdevice int, stream contracts.Stream) (contracts.RawMIDIInfo, error) {
	info := sndRawmidiInfo{
		Device:    uint32(device),
		Subdevice: uint32(subdevice),
		Stream:    kernelStream(stream),
	}
	if err := ioctl(uintptr(c.fd), ctlIoctlRawmidiInfo, unsafe.Pointer(&info)); err != nil {
		return contracts.RawMIDIInfo{}, errors.Wrapf(err, "rawmidi info hw:%d,%d,%d %s", c.card, device, subdevice, stream)
	}
	return contracts.RawMIDIInfo{
		Card:            int(info.Card),
		Device:          int(info.Device),
		Subdevice:       int(info.Subdevice),
		Stream:          stream,
		ID:              cString(info.ID[:]),
		Name:            cString(info.Name[:]),
		SubName:         cString(info.SubName[:]),
		SubdevicesCount: int(info.SubdevicesCount),
		SubdevicesAvail: int(info.SubdevicesAvail),
	}, nil
}

func (c *control) preferSubdevice(subdevice int) error {
	v := int32(subdevice)
	if err := ioctl(uintptr(c.fd), ctlIoctlRawmidiPreferSubdevice, unsafe.Pointer(&v)); err != nil {
		return errors.Wrapf(err, "card %d prefer subdevice %d", c.card, subdevice)
	}
	return nil
}

func (c *control) Close() error {
	c.closeOnce.Do(func() {
		if err := unix.Close(c.fd); err != nil {
			c.closeErr = errors.Wrapf(err, "close card %d control", c.card)
		}
	})
	return c.closeErr
}

func kernelStream(s contracts.Stream) int32 {
	if s == contracts.StreamInput {
		return rawmidiStreamInput
	}
	return rawmidiStreamOutput
}

// port is one open rawmidi stream, input or output.
type port struct {
	file *os.File
	name string

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (p *port) Read(b []byte) (int, error) {
	n, err := p.file.Read(b)
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return n, contracts.ErrPortClosed
		}
		return n, errors.Wrapf(err, "read %s", p.name)
	}
	return n, nil
}

func (p *port) Write(b []byte) (int, error) {
	n, err := p.file.Write(b)
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return n, contracts.ErrPortClosed
		}
		return n, errors.Wrapf(err, "write %s", p.name)
	}
	return n, nil
}

func (p *port) Drain() error {
	// RawControl on a closed file reports poll's own error, not os.ErrClosed.
	if p.closed.Load() {
		return contracts.ErrPortClosed
	}
	rc, err := p.file.SyscallConn()
	if err != nil {
		return errors.Wrapf(err, "drain %s", p.name)
	}
	var drainErr error
	if err := rc.Control(func(fd uintptr) {
		stream := int32(rawmidiStreamOutput)
		drainErr = ioctl(fd, rawmidiIoctlDrain, unsafe.Pointer(&stream))
	}); err != nil {
		if errors.Is(err, os.ErrClosed) || p.closed.Load() {
			return contracts.ErrPortClosed
		}
		return errors.Wrapf(err, "drain %s", p.name)
	}
	if drainErr != nil {
		return errors.Wrapf(drainErr, "drain %s", p.name)
	}
	return nil
}

func (p *port) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if err := p.file.Close(); err != nil {
			p.closeErr = errors.Wrapf(err, "close %s", p.name)
		}
	})
	return p.closeErr
}
