package contracts

import (
	"io"
	"time"
)

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// ClientOptions defines the configuration options for the MIDI client.
type ClientOptions struct {
	Logger         Logger              // Logger for logging events and errors.
	LogLevel       *LogLevel           // Level of logging; nil keeps the logger's own level.
	LogFilePath    string              // File path for logging if file logging is enabled.
	Driver         Driver              // Host driver; chosen by operating system when nil.
	Console        io.Writer           // Destination of the tool's console text.
	Sleeper        func(time.Duration) // Pause between note-on and note-off.
	NoteUnit       time.Duration       // Length of one test note unit.
	CoreMIDIConfig *CoreMIDIConfig     // Configuration specific to CoreMIDI.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the MIDI client. Its level is left alone
// unless WithLogLevel is also given.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the MIDI client, including a logger
// given through WithLogger.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = &level
	}
}

// WithLogFile directs log messages to the file at path.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithDriver sets the host driver, bypassing the operating system lookup.
func WithDriver(d Driver) Option {
	return func(opts *ClientOptions) {
		opts.Driver = d
	}
}

// WithConsole sets the writer receiving the tool's console text.
func WithConsole(w io.Writer) Option {
	return func(opts *ClientOptions) {
		opts.Console = w
	}
}

// WithSleeper replaces time.Sleep in the test tone player.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(opts *ClientOptions) {
		opts.Sleeper = sleep
	}
}

// WithNoteUnit sets the duration of one test note unit.
func WithNoteUnit(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.NoteUnit = d
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI client.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}
