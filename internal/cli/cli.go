// Package cli dispatches the rawmidi command line to the MIDI client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/rawmidi/sdk/contracts"
	"github.com/spf13/cobra"
)

const usageFormat = "Usage: %s [ARGS]\n" +
	"\n" +
	"ARGS:\n" +
	"   -h         Print this help\n" +
	"   -l         List cards\n" +
	"   -p <NAME>  Print midi input of port <NAME> to console\n" +
	"   -t <NAME>  Play test sound to port <NAME> \n"

var errUsage = errors.New("usage")

// Options wires the dispatcher to its environment.
type Options struct {
	Stdout io.Writer
	// NewClient is called only once a command has been recognized.
	NewClient func() (contracts.ClientMIDI, error)
	// InterruptContext returns the context ending the -p reader.
	InterruptContext func() (context.Context, context.CancelFunc)
}

// Usage writes the help text for program to w.
func Usage(w io.Writer, program string) {
	fmt.Fprintf(w, usageFormat, program)
}

// Run executes the command line args, args[0] being the program name. The
// exit status is always 0; failures are reported on Stdout.
func Run(args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.InterruptContext == nil {
		opts.InterruptContext = func() (context.Context, context.CancelFunc) {
			return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		}
	}

	program, rest := "rawmidi", []string{}
	if len(args) > 0 {
		program, rest = args[0], args[1:]
	}

	cmd := newRootCommand(program, opts)
	// A nil slice would make cobra fall back to os.Args.
	cmd.SetArgs(rest)
	if err := cmd.Execute(); err != nil {
		Usage(opts.Stdout, program)
	}
	return 0
}

func newRootCommand(program string, opts Options) *cobra.Command {
	var (
		list      bool
		printName string
		testName  string
	)

	cmd := &cobra.Command{
		Use:           program,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if len(args) != 0 || flags.NFlag() != 1 {
				Usage(opts.Stdout, program)
				return nil
			}

			client, err := opts.NewClient()
			if err != nil {
				fmt.Fprintf(opts.Stdout, "ERROR: Can't initialize MIDI driver: %s\n", err)
				return nil
			}

			switch {
			case list:
				client.ListCards()
			case flags.Changed("print"):
				ctx, stop := opts.InterruptContext()
				defer stop()
				client.PrintMIDIToConsole(ctx, printName)
			case flags.Changed("test"):
				client.PlayTestSound(testName)
			default:
				Usage(opts.Stdout, program)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List cards")
	cmd.Flags().StringVarP(&printName, "print", "p", "", "Print midi input of port `NAME` to console")
	cmd.Flags().StringVarP(&testName, "test", "t", "", "Play test sound to port `NAME`")

	cmd.SetOut(opts.Stdout)
	cmd.SetErr(io.Discard)
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		Usage(opts.Stdout, program)
	})
	cmd.SetFlagErrorFunc(func(*cobra.Command, error) error {
		return errUsage
	})
	return cmd
}
