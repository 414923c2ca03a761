//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/rawmidi/internal/midi/portname"
	"github.com/leandrodaf/rawmidi/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI lookups.
var (
	ErrCreateClient      = errors.New("error creating CoreMIDI client")
	ErrNoSuchCard        = errors.New("no such MIDI device")
	ErrNoSuchDevice      = errors.New("no such MIDI entity")
	ErrNoSuchSubdevice   = errors.New("no such MIDI endpoint")
	ErrCreateInputPort   = errors.New("error creating input port")
	ErrCreateOutputPort  = errors.New("error creating output port")
	ErrConnectionFailure = errors.New("error connecting to MIDI source")
)

const inputBuffer = 256

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// Driver maps CoreMIDI onto the card model: each CoreMIDI device is a card,
// each of its entities a raw MIDI device, and the entity's sources and
// destinations its input and output sub-devices.
type Driver struct {
	logger contracts.Logger
	client coremidi.Client

	mu      sync.Mutex
	devices []coremidi.Device // snapshot taken on first use, dropped by Release
}

// NewDriver creates the CoreMIDI client backing the driver.
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateClient, err)
	}
	options.Logger.Debug("CoreMIDI client successfully created",
		options.Logger.Field().String("clientName", options.CoreMIDIConfig.ClientName))

	return &Driver{logger: options.Logger, client: client}, nil
}

func (d *Driver) snapshot() ([]coremidi.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.devices == nil {
		devices, err := coremidi.AllDevices()
		if err != nil {
			return nil, fmt.Errorf("error listing MIDI devices: %w", err)
		}
		d.devices = devices
	}
	return d.devices, nil
}

// NextCard walks the CoreMIDI device list.
func (d *Driver) NextCard(card int) (int, error) {
	devices, err := d.snapshot()
	if err != nil {
		return contracts.NoIndex, err
	}
	if next := card + 1; next >= 0 && next < len(devices) {
		return next, nil
	}
	return contracts.NoIndex, nil
}

// OpenControl returns a view on one CoreMIDI device.
func (d *Driver) OpenControl(card int) (contracts.Control, error) {
	return d.openControl(card)
}

func (d *Driver) openControl(card int) (*control, error) {
	devices, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	if card < 0 || card >= len(devices) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchCard, card)
	}
	device := devices[card]
	entities, err := device.Entities()
	if err != nil {
		return nil, fmt.Errorf("error listing entities of %s: %w", device.Name(), err)
	}
	return &control{card: card, device: device, entities: entities}, nil
}

// OpenInput connects an input port to the source addressed by name.
func (d *Driver) OpenInput(name string) (contracts.InputPort, error) {
	ctl, addr, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	sources, err := ctl.entity(addr.Device).Sources()
	if err != nil {
		return nil, fmt.Errorf("error listing sources of %s: %w", name, err)
	}
	sub := endpointIndex(addr)
	if sub >= len(sources) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchSubdevice, name)
	}

	p := &inputPort{
		logger: d.logger,
		data:   make(chan []byte, inputBuffer),
		done:   make(chan struct{}),
	}
	in, err := coremidi.NewInputPort(d.client, "rawmidi input", p.handlePacket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}
	p.conn, err = in.Connect(sources[sub])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailure, err)
	}

	d.logger.Debug("MIDI source connected",
		d.logger.Field().String("port", name),
		d.logger.Field().String("source", sources[sub].Name()))
	return p, nil
}

// OpenOutput creates an output port sending to the destination addressed by name.
func (d *Driver) OpenOutput(name string) (contracts.OutputPort, error) {
	ctl, addr, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	destinations, err := ctl.entity(addr.Device).Destinations()
	if err != nil {
		return nil, fmt.Errorf("error listing destinations of %s: %w", name, err)
	}
	sub := endpointIndex(addr)
	if sub >= len(destinations) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchSubdevice, name)
	}

	out, err := coremidi.NewOutputPort(d.client, "rawmidi output")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
	}

	d.logger.Debug("MIDI destination selected",
		d.logger.Field().String("port", name),
		d.logger.Field().String("destination", destinations[sub].Name()))
	return &outputPort{port: out, destination: destinations[sub]}, nil
}

// lookup resolves a port name to its device and entity. A non-numeric card
// matches a CoreMIDI device name, ignoring case.
func (d *Driver) lookup(name string) (*control, portname.Address, error) {
	addr, err := portname.Parse(name)
	if err != nil {
		return nil, addr, err
	}

	card, ok := addr.CardIndex()
	if !ok {
		devices, err := d.snapshot()
		if err != nil {
			return nil, addr, err
		}
		card = -1
		for i, device := range devices {
			if strings.EqualFold(device.Name(), addr.Card) {
				card = i
				break
			}
		}
		if card < 0 {
			return nil, addr, fmt.Errorf("%w: %q", ErrNoSuchCard, addr.Card)
		}
	}

	ctl, err := d.openControl(card)
	if err != nil {
		return nil, addr, err
	}
	if addr.Device >= len(ctl.entities) {
		return nil, addr, fmt.Errorf("%w: %s", ErrNoSuchDevice, name)
	}
	return ctl, addr, nil
}

func endpointIndex(addr portname.Address) int {
	if addr.Subdevice == portname.AnySubdevice {
		return 0
	}
	return addr.Subdevice
}

// Describe returns the error text.
func (d *Driver) Describe(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Release drops the device snapshot so the next enumeration sees hot-plugged devices.
func (d *Driver) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices = nil
	return nil
}

type control struct {
	card     int
	device   coremidi.Device
	entities []coremidi.Entity
}

func (c *control) entity(device int) coremidi.Entity {
	return c.entities[device]
}

func (c *control) CardInfo() (contracts.CardInfo, error) {
	return contracts.CardInfo{
		Card:     c.card,
		ID:       c.device.Name(),
		Driver:   "CoreMIDI",
		Name:     c.device.Name(),
		LongName: strings.TrimSpace(c.device.Manufacturer() + " " + c.device.Name()),
	}, nil
}

func (c *control) NextRawMIDIDevice(device int) (int, error) {
	if next := device + 1; next >= 0 && next < len(c.entities) {
		return next, nil
	}
	return contracts.NoIndex, nil
}

func (c *control) RawMIDIInfo(device, subdevice int, stream contracts.Stream) (contracts.RawMIDIInfo, error) {
	if device < 0 || device >= len(c.entities) {
		return contracts.RawMIDIInfo{}, fmt.Errorf("%w: %d", ErrNoSuchDevice, device)
	}
	entity := c.entities[device]

	var names []string
	switch stream {
	case contracts.StreamInput:
		sources, err := entity.Sources()
		if err != nil {
			return contracts.RawMIDIInfo{}, err
		}
		for _, s := range sources {
			names = append(names, s.Name())
		}
	default:
		destinations, err := entity.Destinations()
		if err != nil {
			return contracts.RawMIDIInfo{}, err
		}
		for _, dst := range destinations {
			names = append(names, dst.Name())
		}
	}
	if subdevice < 0 || subdevice >= len(names) {
		return contracts.RawMIDIInfo{}, fmt.Errorf("%w: %s", ErrNoSuchSubdevice, contracts.HWPortName(c.card, device, subdevice))
	}

	return contracts.RawMIDIInfo{
		Card:            c.card,
		Device:          device,
		Subdevice:       subdevice,
		Stream:          stream,
		ID:              entity.Name(),
		Name:            entity.Name(),
		SubName:         names[subdevice],
		SubdevicesCount: len(names),
		SubdevicesAvail: len(names),
	}, nil
}

func (c *control) Close() error {
	return nil
}

// inputPort turns CoreMIDI's packet callbacks into a byte stream.
type inputPort struct {
	logger  contracts.Logger
	conn    internalPortConnection
	data    chan []byte
	done    chan struct{}
	pending []byte

	closeOnce sync.Once
}

func (p *inputPort) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	data := append([]byte(nil), packet.Data...)
	select {
	case <-p.done:
	case p.data <- data:
	default:
		p.logger.Warn("Input buffer full; dropping MIDI packet", p.logger.Field().String("source", source.Name()))
	}
}

func (p *inputPort) Read(b []byte) (int, error) {
	for len(p.pending) == 0 {
		select {
		case <-p.done:
			return 0, contracts.ErrPortClosed
		case p.pending = <-p.data:
		}
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *inputPort) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		if p.conn != nil {
			p.conn.Disconnect()
		}
	})
	return nil
}

type outputPort struct {
	port        coremidi.OutputPort
	destination coremidi.Destination
	closed      atomic.Bool
}

func (o *outputPort) Write(b []byte) (int, error) {
	if o.closed.Load() {
		return 0, contracts.ErrPortClosed
	}
	packet := coremidi.NewPacket(b, 0)
	if err := packet.Send(&o.port, &o.destination); err != nil {
		return 0, fmt.Errorf("error sending MIDI packet: %w", err)
	}
	return len(b), nil
}

// Drain is a no-op: CoreMIDI schedules packets with time stamp 0 immediately.
func (o *outputPort) Drain() error {
	if o.closed.Load() {
		return contracts.ErrPortClosed
	}
	return nil
}

func (o *outputPort) Close() error {
	o.closed.Store(true)
	return nil
}
