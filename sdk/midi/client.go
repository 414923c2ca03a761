package midi

import (
	"fmt"
	"io"
	"time"

	"github.com/leandrodaf/rawmidi/sdk/contracts"
)

// Client runs the diagnostic operations against a Driver. Console text goes to
// the configured console; driver calls are traced through the logger.
type Client struct {
	driver   contracts.Driver
	logger   contracts.Logger
	console  io.Writer
	sleep    func(time.Duration)
	noteUnit time.Duration
}

// NewMIDIClient creates a new MIDI client with the specified options.
// It applies default options and, unless WithDriver was given, initializes the
// driver of the current operating system.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error, if any occurred during the creation of the client.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	driver := options.Driver
	if driver == nil {
		if driver, err = NewDriver(&options); err != nil {
			return nil, err
		}
	}

	return &Client{
		driver:   driver,
		logger:   options.Logger,
		console:  options.Console,
		sleep:    options.Sleeper,
		noteUnit: options.NoteUnit,
	}, nil
}

func (c *Client) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.console, format, args...)
}

// printError writes the one-line diagnostic for a failed driver call.
func (c *Client) printError(what string, err error) {
	c.printf("ERROR: %s: %s\n", what, c.driver.Describe(err))
}
