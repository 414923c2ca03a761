//go:build linux

package midialsa

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
	"unsafe"

	"github.com/leandrodaf/rawmidi/internal/logger"
	"github.com/leandrodaf/rawmidi/internal/midi/portname"
	"github.com/leandrodaf/rawmidi/sdk/contracts"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sys/unix"
)

func newTestDriver(t *testing.T, cards ...int) *Driver {
	t.Helper()
	dir := t.TempDir()
	for _, card := range cards {
		path := filepath.Join(dir, "controlC"+strconv.Itoa(card))
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return newDriver(logger.NewZapLoggerWithCore(zapcore.NewNopCore()), dir)
}

func TestKernelStructSizes(t *testing.T) {
	if got := unsafe.Sizeof(sndCtlCardInfo{}); got != 376 {
		t.Errorf("sizeof(snd_ctl_card_info) = %d, want 376", got)
	}
	if got := unsafe.Sizeof(sndRawmidiInfo{}); got != 268 {
		t.Errorf("sizeof(snd_rawmidi_info) = %d, want 268", got)
	}
}

func TestNextCard(t *testing.T) {
	d := newTestDriver(t, 0, 2, 5)

	var got []int
	card := contracts.NoIndex
	for {
		var err error
		card, err = d.NextCard(card)
		if err != nil {
			t.Fatalf("NextCard: %v", err)
		}
		if card == contracts.NoIndex {
			break
		}
		got = append(got, card)
	}

	want := []int{0, 2, 5}
	if len(got) != len(want) {
		t.Fatalf("cards = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cards = %v, want %v", got, want)
		}
	}
}

func TestNextCardWithoutCards(t *testing.T) {
	d := newTestDriver(t)

	card, err := d.NextCard(contracts.NoIndex)
	if err != nil {
		t.Fatalf("NextCard: %v", err)
	}
	if card != contracts.NoIndex {
		t.Errorf("NextCard = %d, want NoIndex", card)
	}
}

func TestNextCardRejectsBelowSentinel(t *testing.T) {
	d := newTestDriver(t, 0)

	if _, err := d.NextCard(-2); !errors.Is(err, unix.EINVAL) {
		t.Errorf("NextCard(-2) error = %v, want EINVAL", err)
	}
}

func TestOpenControlMissingCard(t *testing.T) {
	d := newTestDriver(t)

	_, err := d.OpenControl(3)
	if !errors.Is(err, unix.ENOENT) {
		t.Fatalf("OpenControl error = %v, want ENOENT", err)
	}
	if got := d.Describe(err); got != "No such file or directory" {
		t.Errorf("Describe = %q", got)
	}
}

func TestControlQueriesFailOnNonDevice(t *testing.T) {
	d := newTestDriver(t, 0)

	ctl, err := d.OpenControl(0)
	if err != nil {
		t.Fatalf("OpenControl: %v", err)
	}
	defer ctl.Close()

	if _, err := ctl.CardInfo(); !errors.Is(err, unix.ENOTTY) {
		t.Errorf("CardInfo error = %v, want ENOTTY", err)
	}
	if _, err := ctl.NextRawMIDIDevice(contracts.NoIndex); !errors.Is(err, unix.ENOTTY) {
		t.Errorf("NextRawMIDIDevice error = %v, want ENOTTY", err)
	}
	if _, err := ctl.RawMIDIInfo(0, 0, contracts.StreamInput); !errors.Is(err, unix.ENOTTY) {
		t.Errorf("RawMIDIInfo error = %v, want ENOTTY", err)
	}
	if err := ctl.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := ctl.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOpenInputRejectsInvalidName(t *testing.T) {
	d := newTestDriver(t)

	_, err := d.OpenInput("missingport")
	if !errors.Is(err, portname.ErrInvalidPortName) {
		t.Fatalf("OpenInput error = %v, want ErrInvalidPortName", err)
	}
}

func TestOpenOutputUnknownCardID(t *testing.T) {
	d := newTestDriver(t)

	_, err := d.OpenOutput("hw:USB,0,0")
	if !errors.Is(err, ErrNoSuchCard) {
		t.Fatalf("OpenOutput error = %v, want ErrNoSuchCard", err)
	}
	if got := d.Describe(err); got != "no such card" {
		t.Errorf("Describe = %q", got)
	}
}

func TestReleaseDropsCardIDCache(t *testing.T) {
	d := newTestDriver(t)
	d.cardIDs = map[string]int{"USB": 1}

	if err := d.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if d.cardIDs != nil {
		t.Errorf("card id cache survived Release: %v", d.cardIDs)
	}
}

func TestCString(t *testing.T) {
	if got := cString([]byte{'U', 'S', 'B', 0, 'x'}); got != "USB" {
		t.Errorf("cString = %q", got)
	}
	if got := cString([]byte("full")); got != "full" {
		t.Errorf("cString = %q", got)
	}
}

func newPipePorts(t *testing.T) (in, out *port) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	in, out = &port{file: r, name: "hw:1,0,0"}, &port{file: w, name: "hw:1,0,0"}
	t.Cleanup(func() {
		in.Close()
		out.Close()
	})
	return in, out
}

func TestPortCloseUnblocksRead(t *testing.T) {
	in, _ := newPipePorts(t)

	readErr := make(chan error, 1)
	go func() {
		var b [1]byte
		_, err := in.Read(b[:])
		readErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := in.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-readErr:
		if !errors.Is(err, contracts.ErrPortClosed) {
			t.Errorf("Read error = %v, want ErrPortClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read still blocked after Close")
	}
}

func TestPortReadsPendingBytes(t *testing.T) {
	in, out := newPipePorts(t)

	if _, err := out.Write([]byte{0x90}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var b [1]byte
	if n, err := in.Read(b[:]); err != nil || n != 1 || b[0] != 0x90 {
		t.Fatalf("Read = %d, %v, % X", n, err, b)
	}
}

func TestPortCloseIsIdempotent(t *testing.T) {
	in, _ := newPipePorts(t)

	first := in.Close()
	if second := in.Close(); second != first {
		t.Errorf("second Close = %v, first = %v", second, first)
	}
	if first != nil {
		t.Errorf("Close: %v", first)
	}
}

func TestPortUseAfterClose(t *testing.T) {
	in, out := newPipePorts(t)
	in.Close()
	out.Close()

	var b [1]byte
	if _, err := in.Read(b[:]); !errors.Is(err, contracts.ErrPortClosed) {
		t.Errorf("Read error = %v, want ErrPortClosed", err)
	}
	if _, err := out.Write([]byte{0x90, 0x3C, 0x7F}); !errors.Is(err, contracts.ErrPortClosed) {
		t.Errorf("Write error = %v, want ErrPortClosed", err)
	}
	if err := out.Drain(); !errors.Is(err, contracts.ErrPortClosed) {
		t.Errorf("Drain error = %v, want ErrPortClosed", err)
	}
}
