package midi

import (
	"fmt"
	"os"
	"time"

	"github.com/leandrodaf/rawmidi/internal/logger"
	"github.com/leandrodaf/rawmidi/sdk/contracts"
)

// DefaultNoteUnit is the length of one test note unit.
const DefaultNoteUnit = 250 * time.Millisecond

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if the log destination could not be opened.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel != nil {
		options.Logger.SetLevel(*options.LogLevel)
	}

	if options.LogFilePath != "" {
		if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
			return *options, fmt.Errorf("configure log file: %w", err)
		}
	}

	if options.Console == nil {
		options.Console = os.Stdout
	}
	if options.Sleeper == nil {
		options.Sleeper = time.Sleep
	}
	if options.NoteUnit <= 0 {
		options.NoteUnit = DefaultNoteUnit
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "rawmidi"}
	}

	return *options, nil
}
