package midi

import (
	"fmt"
	"time"

	"github.com/leandrodaf/rawmidi/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// C major arpeggio up and down; the last note is held twice as long.
var (
	testTones   = [...]uint8{60, 64, 67, 72, 67, 64, 60}
	testLengths = [...]int{1, 1, 1, 1, 1, 1, 2}
)

const (
	testChannel  = 0
	testVelocity = 127
)

// PlayTestSound plays the test arpeggio on output port name. Each note is a
// note-on followed, after its length, by a note-on with velocity 0.
func (c *Client) PlayTestSound(name string) {
	out, err := c.driver.OpenOutput(name)
	if err != nil {
		c.printError(fmt.Sprintf("Can't open MIDI output '%s'", name), err)
		return
	}
	c.logger.Debug("MIDI output opened", c.logger.Field().String("port", name))

	for i, tone := range testTones {
		c.send(out, name, gomidi.NoteOn(testChannel, tone, testVelocity))
		c.sleep(time.Duration(testLengths[i]) * c.noteUnit)
		c.send(out, name, gomidi.NoteOn(testChannel, tone, 0))
	}

	if err := out.Close(); err != nil {
		c.printError(fmt.Sprintf("Can't close MIDI output '%s'", name), err)
	}
}

// send writes one 3-byte channel message and drains the port. Failures are
// logged and the sequence goes on.
func (c *Client) send(out contracts.OutputPort, name string, msg gomidi.Message) {
	var buf [3]byte
	copy(buf[:], msg)

	if _, err := out.Write(buf[:]); err != nil {
		c.logger.Warn("MIDI write failed",
			c.logger.Field().String("port", name),
			c.logger.Field().String("message", msg.String()),
			c.logger.Field().String("error", c.driver.Describe(err)))
	}
	if err := out.Drain(); err != nil {
		c.logger.Warn("MIDI drain failed",
			c.logger.Field().String("port", name),
			c.logger.Field().String("error", c.driver.Describe(err)))
	}
	c.logger.Debug("MIDI message sent",
		c.logger.Field().String("port", name),
		c.logger.Field().String("message", msg.String()))
}
