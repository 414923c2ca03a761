package midi

import (
	"fmt"

	"github.com/leandrodaf/rawmidi/sdk/contracts"
)

// ListCards prints every sound card followed by its raw MIDI sub-devices.
// Failures are printed and enumeration moves on to the next sibling; only a
// failing next-card query ends it.
func (c *Client) ListCards() {
	defer c.releaseDriverState()

	card := contracts.NoIndex
	for {
		next, err := c.driver.NextCard(card)
		if err != nil {
			c.printError("Can't get the next card number", err)
			return
		}
		if next < 0 {
			return
		}
		card = next
		c.listCard(card)
	}
}

func (c *Client) releaseDriverState() {
	if err := c.driver.Release(); err != nil {
		c.logger.Warn("Failed to release driver state", c.logger.Field().Error("error", err))
	}
}

func (c *Client) listCard(card int) {
	ctl, err := c.driver.OpenControl(card)
	if err != nil {
		c.printError(fmt.Sprintf("Can't open card %d", card), err)
		return
	}
	defer func() {
		if err := ctl.Close(); err != nil {
			c.logger.Warn("Failed to close card control",
				c.logger.Field().Int("card", card),
				c.logger.Field().Error("error", err))
		}
	}()

	if info, err := ctl.CardInfo(); err != nil {
		c.printError(fmt.Sprintf("Can't get info for card %d", card), err)
	} else {
		c.printf("Card %d = %s\n", card, info.Name)
	}

	device := contracts.NoIndex
	for {
		next, err := ctl.NextRawMIDIDevice(device)
		if err != nil {
			c.printError("Can't get next MIDI device number", err)
			return
		}
		if next < 0 {
			return
		}
		device = next
		c.listSubdevices(ctl, card, device, contracts.StreamInput)
		c.listSubdevices(ctl, card, device, contracts.StreamOutput)
	}
}

// listSubdevices prints one line per sub-device of device in one direction.
// The count is only known once sub-device 0 has answered.
func (c *Client) listSubdevices(ctl contracts.Control, card, device int, stream contracts.Stream) {
	label := "In "
	if stream == contracts.StreamOutput {
		label = "Out"
	}

	count := 1
	for sub := 0; sub < count; sub++ {
		name := contracts.HWPortName(card, device, sub)
		info, err := ctl.RawMIDIInfo(device, sub, stream)
		if err != nil {
			c.printError(fmt.Sprintf("Can't get info for MIDI %s subdevice %s", stream, name), err)
			continue
		}
		if sub == 0 {
			count = info.SubdevicesCount
		}
		c.logger.Debug("Raw MIDI subdevice",
			c.logger.Field().String("port", name),
			c.logger.Field().String("stream", stream.String()),
			c.logger.Field().String("name", info.Name),
			c.logger.Field().String("subName", info.SubName))
		c.printf("  MIDI %s %d = %s\n", label, sub, name)
	}
}
