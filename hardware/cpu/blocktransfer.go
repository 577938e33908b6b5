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

package cpu

import "math/bits"

// blockTransfer implements LDM/STM across all twelve addressing-mode/
// direction/writeback/user-bank combinations (spec §4.1 "Block transfer").
//
// The base-in-register-list corner case follows the documented ARM rule:
// for STM, the value stored for the base register is its original value
// if it is first in the list, matching simple single-pass iteration (the
// base is only ever written back after the whole transfer, so an STM never
// observes its own writeback); for LDM, a loaded base overrides any
// writeback value applied afterwards (spec §8 "LDM with base in register
// list").
func (c *CPU) blockTransfer(opcode uint32) uint32 {
	rn := int((opcode >> 16) & 0xF)
	list := opcode & 0xFFFF
	loadBit := opcode&0x00100000 != 0
	writebackBit := opcode&0x00200000 != 0
	userBank := opcode&0x00400000 != 0
	up := opcode&0x00800000 != 0
	pre := opcode&0x01000000 != 0

	count := bits.OnesCount32(list)
	if count == 0 {
		// Documented edge case: an empty register list transfers R15 alone
		// and applies a one-register (4-byte) address step.
		count = 1
	}

	base := c.R(rn)
	var start uint32
	if up {
		start = base
	} else {
		start = base - uint32(count)*4
	}

	addr := start
	if up && pre {
		addr += 4
	} else if !up && !pre {
		addr += 4
	}

	writeback := base
	if up {
		writeback = base + uint32(count)*4
	} else {
		writeback = base - uint32(count)*4
	}

	baseLoaded := false
	first := true
	transferred := false
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		transferred = true
		if loadBit {
			value := c.bus.Read32(addr &^ 3)
			if userBank && i < 15 {
				c.regs.setUsrR(i, value)
			} else if i == 15 {
				c.SetR(15, value&^3)
				baseLoaded = baseLoaded || i == rn
				c.flushPipeline()
			} else {
				c.SetR(i, value)
			}
			if i == rn {
				baseLoaded = true
			}
		} else {
			var value uint32
			if userBank {
				value = c.regs.usrR(i)
			} else if i == rn && first {
				value = base
			} else if i == 15 {
				value = c.pcRead() + 4
			} else {
				value = c.R(i)
			}
			c.bus.Write32(addr&^3, value)
		}
		first = false
		addr += 4
	}
	if !transferred {
		// list==0 special case: transfer R15 only.
		if loadBit {
			value := c.bus.Read32(addr &^ 3)
			c.SetR(15, value&^3)
			c.flushPipeline()
		} else {
			c.bus.Write32(addr&^3, c.pcRead()+4)
		}
	}

	if writebackBit && !(loadBit && baseLoaded) {
		c.SetR(rn, writeback)
	}

	if loadBit && list&0x8000 != 0 {
		return uint32(count) + 4
	}
	if count < 2 {
		return 2
	}
	return uint32(count)
}
