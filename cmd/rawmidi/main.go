package main

import (
	"os"

	"github.com/leandrodaf/rawmidi/internal/cli"
	"github.com/leandrodaf/rawmidi/internal/logger"
	"github.com/leandrodaf/rawmidi/sdk/contracts"
	"github.com/leandrodaf/rawmidi/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()

	level, err := contracts.ParseLogLevel(os.Getenv("RAWMIDI_LOG_LEVEL"))
	if err != nil {
		log.Warn("Ignoring RAWMIDI_LOG_LEVEL", log.Field().Error("error", err))
	}

	code := cli.Run(os.Args, cli.Options{
		Stdout: os.Stdout,
		NewClient: func() (contracts.ClientMIDI, error) {
			return midi.NewMIDIClient(
				contracts.WithLogger(log),
				contracts.WithLogLevel(level),
				contracts.WithLogFile(os.Getenv("RAWMIDI_LOG_FILE")),
			)
		},
	})
	_ = log.Sync()
	os.Exit(code)
}
