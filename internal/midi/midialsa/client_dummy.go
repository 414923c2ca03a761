//go:build !linux

package midialsa

import (
	"fmt"

	"github.com/leandrodaf/rawmidi/sdk/contracts"
)

var errUnavailable = fmt.Errorf("ALSA raw MIDI is not available on this platform")

type dummyDriver struct {
	logger contracts.Logger
}

// NewDriver initializes a dummy ALSA driver for non-Linux systems.
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Info("Using dummy ALSA driver for non-Linux system")
	return &dummyDriver{logger: options.Logger}, nil
}

func (d *dummyDriver) NextCard(card int) (int, error) {
	d.logger.Warn("NextCard called on dummy ALSA driver")
	return contracts.NoIndex, errUnavailable
}

func (d *dummyDriver) OpenControl(card int) (contracts.Control, error) {
	d.logger.Warn("OpenControl called on dummy ALSA driver")
	return nil, errUnavailable
}

func (d *dummyDriver) OpenInput(name string) (contracts.InputPort, error) {
	d.logger.Warn("OpenInput called on dummy ALSA driver")
	return nil, errUnavailable
}

func (d *dummyDriver) OpenOutput(name string) (contracts.OutputPort, error) {
	d.logger.Warn("OpenOutput called on dummy ALSA driver")
	return nil, errUnavailable
}

func (d *dummyDriver) Describe(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (d *dummyDriver) Release() error {
	return nil
}
