package midi

import (
	"context"
	"fmt"
)

// PrintMIDIToConsole prints every byte received on input port name until a
// read fails or ctx is done. Cancelling ctx closes the port, which unblocks a
// pending read. The port is closed on every path.
func (c *Client) PrintMIDIToConsole(ctx context.Context, name string) {
	in, err := c.driver.OpenInput(name)
	if err != nil {
		c.printError(fmt.Sprintf("Can't open MIDI input '%s'", name), err)
		return
	}
	c.logger.Debug("MIDI input opened", c.logger.Field().String("port", name))

	stop := context.AfterFunc(ctx, func() {
		in.Close()
	})
	defer stop()
	defer func() {
		if err := in.Close(); err != nil {
			c.printError(fmt.Sprintf("Can't close MIDI input '%s'", name), err)
		}
	}()

	var buf [1]byte
	for ctx.Err() == nil {
		n, err := in.Read(buf[:])
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			c.printError(fmt.Sprintf("Can't read MIDI input '%s'", name), err)
			return
		}
		if n == 1 {
			c.printf("Midi in: 0x%02X\n", buf[0])
		}
	}
	c.logger.Debug("MIDI input reading cancelled",
		c.logger.Field().String("port", name),
		c.logger.Field().Error("reason", ctx.Err()))
}
