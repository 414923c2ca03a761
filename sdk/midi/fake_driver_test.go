package midi

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/rawmidi/internal/logger"
	"github.com/leandrodaf/rawmidi/sdk/contracts"
	"go.uber.org/zap/zapcore"
)

// fakeDriver is a scripted contracts.Driver recording every call.
type fakeDriver struct {
	cards       []*fakeCard
	nextCardErr error
	describe    func(error) string

	inputs       map[string]*fakeInput
	outputs      map[string]*fakeOutput
	openInputs   int
	openOutputs  int
	releaseCalls int
	calls        int
}

type fakeCard struct {
	index   int
	info    contracts.CardInfo
	infoErr error
	openErr error

	devices    []int
	nextDevErr error
	counts     map[devStream]int
	subErrs    map[subKey]error

	closeCalls int
}

type devStream struct {
	device int
	stream contracts.Stream
}

type subKey struct {
	device, subdevice int
	stream            contracts.Stream
}

func (d *fakeDriver) card(index int) *fakeCard {
	for _, c := range d.cards {
		if c.index == index {
			return c
		}
	}
	return nil
}

func (d *fakeDriver) NextCard(card int) (int, error) {
	d.calls++
	if d.nextCardErr != nil {
		return contracts.NoIndex, d.nextCardErr
	}
	for _, c := range d.cards {
		if c.index > card {
			return c.index, nil
		}
	}
	return contracts.NoIndex, nil
}

func (d *fakeDriver) OpenControl(card int) (contracts.Control, error) {
	d.calls++
	c := d.card(card)
	if c == nil {
		return nil, errors.New("no such card")
	}
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c, nil
}

func (d *fakeDriver) OpenInput(name string) (contracts.InputPort, error) {
	d.calls++
	d.openInputs++
	in, ok := d.inputs[name]
	if !ok {
		return nil, errors.New("No such file or directory")
	}
	return in, nil
}

func (d *fakeDriver) OpenOutput(name string) (contracts.OutputPort, error) {
	d.calls++
	d.openOutputs++
	out, ok := d.outputs[name]
	if !ok {
		return nil, errors.New("No such file or directory")
	}
	return out, nil
}

func (d *fakeDriver) Describe(err error) string {
	if d.describe != nil {
		return d.describe(err)
	}
	return err.Error()
}

func (d *fakeDriver) Release() error {
	d.releaseCalls++
	return nil
}

func (c *fakeCard) CardInfo() (contracts.CardInfo, error) {
	if c.infoErr != nil {
		return contracts.CardInfo{}, c.infoErr
	}
	return c.info, nil
}

func (c *fakeCard) NextRawMIDIDevice(device int) (int, error) {
	if c.nextDevErr != nil {
		return contracts.NoIndex, c.nextDevErr
	}
	for _, d := range c.devices {
		if d > device {
			return d, nil
		}
	}
	return contracts.NoIndex, nil
}

func (c *fakeCard) RawMIDIInfo(device, subdevice int, stream contracts.Stream) (contracts.RawMIDIInfo, error) {
	if err := c.subErrs[subKey{device, subdevice, stream}]; err != nil {
		return contracts.RawMIDIInfo{}, err
	}
	count, ok := c.counts[devStream{device, stream}]
	if !ok || subdevice >= count {
		return contracts.RawMIDIInfo{}, errors.New("No such device or address")
	}
	return contracts.RawMIDIInfo{
		Card:            c.index,
		Device:          device,
		Subdevice:       subdevice,
		Stream:          stream,
		Name:            c.info.Name + " MIDI",
		SubdevicesCount: count,
	}, nil
}

func (c *fakeCard) Close() error {
	c.closeCalls++
	return nil
}

// fakeInput hands out data one byte per read, then returns err; with a nil
// err it blocks until closed.
type fakeInput struct {
	mu         sync.Mutex
	data       []byte
	err        error
	closed     chan struct{}
	closeCalls int
	reads      int
}

func newFakeInput(data []byte, err error) *fakeInput {
	return &fakeInput{data: data, err: err, closed: make(chan struct{})}
}

func (f *fakeInput) Read(p []byte) (int, error) {
	f.mu.Lock()
	f.reads++
	if len(f.data) > 0 {
		p[0] = f.data[0]
		f.data = f.data[1:]
		f.mu.Unlock()
		return 1, nil
	}
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return 0, err
	}
	<-f.closed
	return 0, contracts.ErrPortClosed
}

func (f *fakeInput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeCalls == 0 {
		close(f.closed)
	}
	f.closeCalls++
	return nil
}

func (f *fakeInput) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *fakeInput) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// fakeOutput records writes and drains in order.
type fakeOutput struct {
	events     []string
	writes     [][]byte
	drains     int
	writeErr   error
	drainErr   error
	closeErr   error
	closeCalls int
}

func (f *fakeOutput) Write(p []byte) (int, error) {
	f.events = append(f.events, "write")
	f.writes = append(f.writes, append([]byte(nil), p...))
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeOutput) Drain() error {
	f.events = append(f.events, "drain")
	f.drains++
	return f.drainErr
}

func (f *fakeOutput) Close() error {
	f.closeCalls++
	return f.closeErr
}

// fakeClock accumulates requested sleeps instead of sleeping.
type fakeClock struct {
	slept  time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept += d
	c.sleeps = append(c.sleeps, d)
}

func newTestClient(t *testing.T, d contracts.Driver, opts ...contracts.Option) (*Client, *bytes.Buffer) {
	t.Helper()
	console := &bytes.Buffer{}
	all := append([]contracts.Option{
		contracts.WithDriver(d),
		contracts.WithConsole(console),
		contracts.WithLogger(logger.NewZapLoggerWithCore(zapcore.NewNopCore())),
	}, opts...)
	client, err := NewMIDIClient(all...)
	if err != nil {
		t.Fatalf("NewMIDIClient: %v", err)
	}
	return client.(*Client), console
}
