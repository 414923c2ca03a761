//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/rawmidi/sdk/contracts"
)

var errUnavailable = fmt.Errorf("CoreMIDI is not available on this platform")

type DummyDriver struct {
	logger contracts.Logger
}

func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Info("Using dummy CoreMIDI driver for non-macOS system")
	return &DummyDriver{
		logger: options.Logger,
	}, nil
}

func (m *DummyDriver) NextCard(card int) (int, error) {
	m.logger.Warn("NextCard called on dummy CoreMIDI driver")
	return contracts.NoIndex, errUnavailable
}

func (m *DummyDriver) OpenControl(card int) (contracts.Control, error) {
	m.logger.Warn("OpenControl called on dummy CoreMIDI driver")
	return nil, errUnavailable
}

func (m *DummyDriver) OpenInput(name string) (contracts.InputPort, error) {
	m.logger.Warn("OpenInput called on dummy CoreMIDI driver")
	return nil, errUnavailable
}

func (m *DummyDriver) OpenOutput(name string) (contracts.OutputPort, error) {
	m.logger.Warn("OpenOutput called on dummy CoreMIDI driver")
	return nil, errUnavailable
}

func (m *DummyDriver) Describe(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (m *DummyDriver) Release() error {
	return nil
}
