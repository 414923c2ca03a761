//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/rawmidi/sdk/contracts"
)

var errUnavailable = fmt.Errorf("WinMM MIDI is not available on this platform")

type dummyDriver struct {
	logger contracts.Logger
}

// NewDriver initializes a dummy WinMM driver for non-Windows systems.
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Info("Using dummy WinMM driver for non-Windows system")
	return &dummyDriver{
		logger: options.Logger,
	}, nil
}

// NextCard logs a warning and returns an error indicating that MIDI functionality is unavailable on this platform.
func (m *dummyDriver) NextCard(card int) (int, error) {
	m.logger.Warn("NextCard called on dummy WinMM driver")
	return contracts.NoIndex, errUnavailable
}

// OpenControl logs a warning and returns an error indicating that MIDI functionality is unavailable on this platform.
func (m *dummyDriver) OpenControl(card int) (contracts.Control, error) {
	m.logger.Warn("OpenControl called on dummy WinMM driver")
	return nil, errUnavailable
}

// OpenInput logs a warning and returns an error indicating that MIDI functionality is unavailable on this platform.
func (m *dummyDriver) OpenInput(name string) (contracts.InputPort, error) {
	m.logger.Warn("OpenInput called on dummy WinMM driver")
	return nil, errUnavailable
}

// OpenOutput logs a warning and returns an error indicating that MIDI functionality is unavailable on this platform.
func (m *dummyDriver) OpenOutput(name string) (contracts.OutputPort, error) {
	m.logger.Warn("OpenOutput called on dummy WinMM driver")
	return nil, errUnavailable
}

// Describe returns the error text.
func (m *dummyDriver) Describe(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Release does nothing on the dummy driver.
func (m *dummyDriver) Release() error {
	return nil
}
