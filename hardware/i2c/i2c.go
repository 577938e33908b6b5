// This file is part of GamePawd.
//
// GamePawd is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GamePawd is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GamePawd.  If not, see <https://www.gnu.org/licenses/>.

// Package i2c implements the four I²C buses and their canned-reply device
// model (spec §4.9). I2C.Conn exposes a bus as a periph.io/x/conn/v3/i2c
// Conn, so an i2c.Dev (or any other code written against that interface)
// can drive a whole device-id/command/reply exchange with one Tx call.
package i2c

import "github.com/Hydr8gon/GamePawd/logger"

// IRQRequester raises the shared I²C line once enabled per-bus.
type IRQRequester interface {
	RequestIRQ(line int)
}

const lineI2C int = 15
const busCount = 4

// status register bits.
const (
	statusInProgress = 0x2 // bit 1
)

type bus struct {
	control uint32
	status  uint32

	byteIndex  int
	deviceID   uint8
	command    uint8
	replyIndex int
}

// I2C owns the four buses and the global per-bus IRQ-enable bitmap.
type I2C struct {
	irq      IRQRequester
	buses    [busCount]bus
	irqFlags uint32 // global IRQ bitmap, one bit per bus
}

// New creates an I2C bound to irq.
func New(irq IRQRequester) *I2C {
	return &I2C{irq: irq}
}

// Reset clears all four buses.
func (c *I2C) Reset() {
	for i := range c.buses {
		c.buses[i] = bus{}
	}
	c.irqFlags = 0
}

// ReadControl / WriteControl access a bus's control register. Writing the
// start bit (edge-triggered) resets the byte index (spec §4.9).
func (c *I2C) ReadControl(n int) uint32 { return c.buses[n].control }

func (c *I2C) WriteControl(n int, mask, value uint32) {
	b := &c.buses[n]
	old := b.control
	b.control = (old &^ mask) | (value & mask)
	startEdge := b.control&0x1 != 0 && old&0x1 == 0
	stopEdge := b.control&0x2 != 0 && old&0x2 == 0
	if startEdge {
		b.byteIndex = 0
		b.status |= statusInProgress
	}
	if stopEdge {
		b.status &^= statusInProgress
	}
}

// ReadStatus returns a bus's status register.
func (c *I2C) ReadStatus(n int) uint32 { return c.buses[n].status }

// ReadData / WriteData transfer one byte and advance the device-model
// state machine: the first write is the device id, the second is the
// command; subsequent reads return canned replies (spec §4.9).
func (c *I2C) WriteData(n int, value uint8) {
	b := &c.buses[n]
	switch b.byteIndex {
	case 0:
		b.deviceID = value
	case 1:
		b.command = value
		b.replyIndex = 0
	}
	b.byteIndex++
	c.advance(n)
}

func (c *I2C) ReadData(n int) uint32 {
	b := &c.buses[n]
	reply := cannedReply(b.deviceID, b.command, b.replyIndex)
	b.replyIndex++
	b.byteIndex++
	c.advance(n)
	return uint32(reply)
}

// advance marks "byte acknowledged, data ready clear" and, if this bus's
// IRQ is enabled, sets its flag in the global bitmap and requests line 15.
func (c *I2C) advance(n int) {
	b := &c.buses[n]
	b.status |= 0x4  // byte acknowledged
	b.status &^= 0x8 // data ready clear
	if b.control&0x80 != 0 { // per-bus IRQ enable
		c.irqFlags |= 1 << uint(n)
		c.irq.RequestIRQ(lineI2C)
	}
}

// ReadIRQFlags / ClearIRQFlags expose the global bitmap for MMIO.
func (c *I2C) ReadIRQFlags() uint32 { return c.irqFlags }
func (c *I2C) ClearIRQFlags(mask uint32) { c.irqFlags &^= mask }

// cannedReply implements the device table (spec §4.9). index tracks which
// byte of a multi-byte reply (e.g. the LCD's 4-byte identification string)
// is being read.
func cannedReply(deviceID, command uint8, index int) uint8 {
	switch deviceID {
	case 0x39: // LCD
		if command == 0xBF {
			reply := [4]uint8{0, 0, 0, 0x02}
			if index < len(reply) {
				return reply[index]
			}
			return 0
		}
	case 0x21: // camera
		switch command {
		case 0x0A:
			return 0x77
		case 0x0B:
			return 0x42
		case 0x11:
			return 0x01
		case 0x9C:
			return 0x1D
		case 0x9D:
			return 0x2E
		}
	}
	logger.Logf(logger.Allow, "i2c", "unknown device 0x%02X command 0x%02X", deviceID, command)
	return 0x00
}
