//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/rawmidi/internal/midi/portname"
	"github.com/leandrodaf/rawmidi/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type (
	HMIDIIN  windows.Handle
	HMIDIOUT windows.Handle
)

// Constants for open flags
const (
	CALLBACK_NULL     = 0x00000000 // No callback
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

// WinMM exposes a single pseudo card.
const winmmCard = 0

const inputBuffer = 1024

var (
	ErrNoSuchCard      = errors.New("no such card")
	ErrNoSuchDevice    = errors.New("no such MIDI device")
	ErrNoSuchSubdevice = errors.New("no such MIDI subdevice")
)

// mmError is a non-zero MMRESULT.
type mmError uintptr

func (e mmError) Error() string {
	return fmt.Sprintf("MMRESULT %d", uintptr(e))
}

// Struct representing MIDI input device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Struct representing MIDI output device capabilities
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs  = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps  = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen        = winmm.NewProc("midiInOpen")
	procMidiInStart       = winmm.NewProc("midiInStart")
	procMidiInStop        = winmm.NewProc("midiInStop")
	procMidiInReset       = winmm.NewProc("midiInReset")
	procMidiInClose       = winmm.NewProc("midiInClose")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
	procMidiOutGetErrText = winmm.NewProc("midiOutGetErrorTextW")
)

// Input ports are handed to the callback by id, not by pointer.
var (
	callbackOnce sync.Once
	callback     uintptr

	portsMu    sync.Mutex
	ports      = map[uintptr]*inputPort{}
	nextPortID uintptr
)

// Driver implements contracts.Driver on the Windows multimedia API.
// Device d of the pseudo card pairs WinMM input d with WinMM output d.
type Driver struct {
	logger contracts.Logger
}

// NewDriver creates a MIDI driver for Windows
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Debug("WinMM MIDI driver created")
	return &Driver{logger: options.Logger}, nil
}

func numInputs() int {
	r0, _, _ := procMidiInGetNumDevs.Call()
	return int(uint32(r0))
}

func numOutputs() int {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	return int(uint32(r0))
}

func inputName(id int) (string, error) {
	var caps midiInCaps
	r1, _, _ := procMidiInGetDevCaps.Call(uintptr(id), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
	if r1 != 0 {
		return "", mmError(r1)
	}
	return windows.UTF16ToString(caps.szPname[:]), nil
}

func outputName(id int) (string, error) {
	var caps midiOutCaps
	r1, _, _ := procMidiOutGetDevCaps.Call(uintptr(id), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
	if r1 != 0 {
		return "", mmError(r1)
	}
	return windows.UTF16ToString(caps.szPname[:]), nil
}

// NextCard reports the pseudo card when any MIDI port exists.
func (d *Driver) NextCard(card int) (int, error) {
	if card < winmmCard && numInputs()+numOutputs() > 0 {
		return winmmCard, nil
	}
	return contracts.NoIndex, nil
}

func (d *Driver) OpenControl(card int) (contracts.Control, error) {
	if card != winmmCard {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchCard, card)
	}
	return &control{}, nil
}

func (d *Driver) lookup(name string) (int, error) {
	addr, err := portname.Parse(name)
	if err != nil {
		return 0, err
	}
	if card, ok := addr.CardIndex(); !ok || card != winmmCard {
		return 0, fmt.Errorf("%w: %s", ErrNoSuchCard, addr.Card)
	}
	if addr.Subdevice > 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoSuchSubdevice, name)
	}
	return addr.Device, nil
}

// OpenInput opens and starts a WinMM input device.
func (d *Driver) OpenInput(name string) (contracts.InputPort, error) {
	id, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	if id >= numInputs() {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchDevice, name)
	}

	callbackOnce.Do(func() {
		callback = windows.NewCallback(midiInCallback)
	})

	p := &inputPort{
		logger: d.logger,
		data:   make(chan byte, inputBuffer),
		done:   make(chan struct{}),
	}
	portsMu.Lock()
	nextPortID++
	p.id = nextPortID
	ports[p.id] = p
	portsMu.Unlock()

	r1, _, _ := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&p.handle)),
		uintptr(id),
		callback,
		p.id,
		uintptr(CALLBACK_FUNCTION|MIDI_IO_STATUS),
	)
	if r1 != 0 {
		p.unregister()
		return nil, fmt.Errorf("failed to open MIDI input %d: %w", id, mmError(r1))
	}
	if r1, _, _ := procMidiInStart.Call(uintptr(p.handle)); r1 != 0 {
		procMidiInClose.Call(uintptr(p.handle))
		p.unregister()
		return nil, fmt.Errorf("failed to start MIDI input %d: %w", id, mmError(r1))
	}

	d.logger.Debug("MIDI input started", d.logger.Field().String("port", name), d.logger.Field().Int("deviceID", id))
	return p, nil
}

// OpenOutput opens a WinMM output device.
func (d *Driver) OpenOutput(name string) (contracts.OutputPort, error) {
	id, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	if id >= numOutputs() {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchDevice, name)
	}

	o := &outputPort{}
	r1, _, _ := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&o.handle)),
		uintptr(id),
		0,
		0,
		uintptr(CALLBACK_NULL),
	)
	if r1 != 0 {
		return nil, fmt.Errorf("failed to open MIDI output %d: %w", id, mmError(r1))
	}

	d.logger.Debug("MIDI output opened", d.logger.Field().String("port", name), d.logger.Field().Int("deviceID", id))
	return o, nil
}

// Describe asks WinMM for the text of MMRESULT errors.
func (d *Driver) Describe(err error) string {
	if err == nil {
		return ""
	}
	var mm mmError
	if errors.As(err, &mm) {
		var buf [256]uint16
		r1, _, _ := procMidiOutGetErrText.Call(uintptr(mm), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if r1 == 0 {
			return windows.UTF16ToString(buf[:])
		}
	}
	return err.Error()
}

func (d *Driver) Release() error {
	return nil
}

type control struct{}

func (c *control) CardInfo() (contracts.CardInfo, error) {
	return contracts.CardInfo{
		Card:     winmmCard,
		ID:       "WinMM",
		Driver:   "winmm",
		Name:     "Windows MIDI",
		LongName: "Windows Multimedia MIDI",
	}, nil
}

func (c *control) NextRawMIDIDevice(device int) (int, error) {
	next := device + 1
	if next >= 0 && (next < numInputs() || next < numOutputs()) {
		return next, nil
	}
	return contracts.NoIndex, nil
}

func (c *control) RawMIDIInfo(device, subdevice int, stream contracts.Stream) (contracts.RawMIDIInfo, error) {
	if subdevice != 0 {
		return contracts.RawMIDIInfo{}, fmt.Errorf("%w: %s", ErrNoSuchSubdevice, contracts.HWPortName(winmmCard, device, subdevice))
	}

	var (
		name string
		err  error
	)
	switch stream {
	case contracts.StreamInput:
		if device >= numInputs() {
			return contracts.RawMIDIInfo{}, fmt.Errorf("%w: input %d", ErrNoSuchDevice, device)
		}
		name, err = inputName(device)
	default:
		if device >= numOutputs() {
			return contracts.RawMIDIInfo{}, fmt.Errorf("%w: output %d", ErrNoSuchDevice, device)
		}
		name, err = outputName(device)
	}
	if err != nil {
		return contracts.RawMIDIInfo{}, err
	}

	return contracts.RawMIDIInfo{
		Card:            winmmCard,
		Device:          device,
		Subdevice:       0,
		Stream:          stream,
		ID:              name,
		Name:            name,
		SubName:         name,
		SubdevicesCount: 1,
		SubdevicesAvail: 1,
	}, nil
}

func (c *control) Close() error {
	return nil
}

// inputPort queues the bytes of incoming short messages.
type inputPort struct {
	id     uintptr
	handle HMIDIIN
	logger contracts.Logger
	data   chan byte
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// midiInCallback processes incoming MIDI messages
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	portsMu.Lock()
	p := ports[dwInstance]
	portsMu.Unlock()
	if p == nil {
		return 0
	}

	switch wMsg {
	case MIM_OPEN:
		p.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		p.logger.Debug("MIDI device closed")
	case MIM_DATA, MIM_MOREDATA:
		for _, b := range unpackShortMessage(uint32(dwParam1)) {
			select {
			case p.data <- b:
			default:
				p.logger.Warn("MIDI input buffer is full; byte discarded")
			}
		}
	case MIM_ERROR, MIM_LONGERROR:
		p.logger.Error(fmt.Sprintf("MIDI error: msg=0x%X", wMsg))
	default:
		p.logger.Warn(fmt.Sprintf("Unknown MIDI message: 0x%X", wMsg))
	}
	return 0
}

func (p *inputPort) unregister() {
	portsMu.Lock()
	delete(ports, p.id)
	portsMu.Unlock()
}

func (p *inputPort) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	select {
	case <-p.done:
		return 0, contracts.ErrPortClosed
	case b[0] = <-p.data:
	}
	n := 1
	for n < len(b) {
		select {
		case b[n] = <-p.data:
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

// Close stops the device and releases its handle
func (p *inputPort) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		if r1, _, _ := procMidiInStop.Call(uintptr(p.handle)); r1 != 0 {
			p.closeErr = fmt.Errorf("failed to stop MIDI input: %w", mmError(r1))
		}
		procMidiInReset.Call(uintptr(p.handle))
		if r1, _, _ := procMidiInClose.Call(uintptr(p.handle)); r1 != 0 && p.closeErr == nil {
			p.closeErr = fmt.Errorf("failed to close MIDI input: %w", mmError(r1))
		}
		p.unregister()
	})
	return p.closeErr
}

type outputPort struct {
	mu     sync.Mutex
	handle HMIDIOUT
	closed bool
}

func (o *outputPort) Write(b []byte) (int, error) {
	msgs, err := packShortMessages(b)
	if err != nil {
		return 0, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return 0, contracts.ErrPortClosed
	}
	written := 0
	for _, msg := range msgs {
		if r1, _, _ := procMidiOutShortMsg.Call(uintptr(o.handle), uintptr(msg)); r1 != 0 {
			return written, fmt.Errorf("failed to send MIDI message: %w", mmError(r1))
		}
		written += messageLength(byte(msg))
	}
	return written, nil
}

// Drain is a no-op: midiOutShortMsg returns once the message has been sent.
func (o *outputPort) Drain() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return contracts.ErrPortClosed
	}
	return nil
}

func (o *outputPort) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	if r1, _, _ := procMidiOutClose.Call(uintptr(o.handle)); r1 != 0 {
		return fmt.Errorf("failed to close MIDI output: %w", mmError(r1))
	}
	return nil
}
