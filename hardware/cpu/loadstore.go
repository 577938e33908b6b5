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

// transferAddress resolves the four addressing-mode variants shared by
// single/halfword transfer: pre/post-indexed, up/down, with writeback
// (spec §4.1 "Addressing modes").
func (c *CPU) transferAddress(opcode uint32, offset uint32) (addr uint32, writeback uint32) {
	rn := int((opcode >> 16) & 0xF)
	base := c.R(rn)
	pre := opcode&0x01000000 != 0
	up := opcode&0x00800000 != 0
	writebackBit := opcode&0x00200000 != 0

	var modified uint32
	if up {
		modified = base + offset
	} else {
		modified = base - offset
	}

	if pre {
		addr = modified
	} else {
		addr = base
	}

	if !pre || writebackBit {
		writeback = modified
		if rn == 15 {
			writeback = 0 // R15 as base is never written back in practice
		}
	}
	return addr, writeback
}

func (c *CPU) writeBaseIfNeeded(opcode uint32, rn int, value uint32, hadWriteback bool) {
	pre := opcode&0x01000000 != 0
	writebackBit := opcode&0x00200000 != 0
	if (!pre || writebackBit) && rn != 15 {
		c.SetR(rn, value)
	}
}

// singleTransfer implements LDR/STR/LDRB/STRB, register or immediate
// offset (spec §4.1 "Load/store").
func (c *CPU) singleTransfer(opcode uint32) uint32 {
	rd := int((opcode >> 12) & 0xF)
	rn := int((opcode >> 16) & 0xF)
	byteBit := opcode&0x00400000 != 0
	loadBit := opcode&0x00100000 != 0

	var offset uint32
	if opcode&0x02000000 != 0 {
		offset, _, _ = c.operand2RegShift(opcode)
	} else {
		offset = opcode & 0xFFF
	}

	addr, wb := c.transferAddress(opcode, offset)
	c.writeBaseIfNeeded(opcode, rn, wb, true)

	if loadBit {
		var value uint32
		if byteBit {
			value = uint32(c.bus.Read8(addr))
		} else {
			value = rotateMisaligned32(c.bus.Read32(addr&^3), addr)
		}
		if rd == 15 {
			c.SetR(15, value&^3)
			c.flushPipeline()
			return 5
		}
		c.SetR(rd, value)
		return 3
	}

	var value uint32
	if rd == 15 {
		value = c.pcRead() + 4
	} else {
		value = c.R(rd)
	}
	if byteBit {
		c.bus.Write8(addr, uint8(value))
	} else {
		c.bus.Write32(addr&^3, value)
	}
	return 2
}

// operand2RegShift resolves the register-offset form used by single
// transfer (identical shifter encoding to data processing operand2, but
// shift amount is always an immediate, never register-specified).
func (c *CPU) operand2RegShift(opcode uint32) (uint32, bool, bool) {
	rm := int(opcode & 0xF)
	val := c.R(rm)
	shiftType := (opcode >> 5) & 0x3
	amount := (opcode >> 7) & 0x1F
	switch shiftType {
	case 0:
		return shiftLSLImm(val, amount)
	case 1:
		return shiftLSRImm(val, amount)
	case 2:
		return shiftASRImm(val, amount)
	default:
		return shiftRORImm(val, amount, c.C())
	}
}

// rotateMisaligned32 implements the architectural "LDR from a misaligned
// address rotates the loaded word" behaviour (spec §4.1 "Misalignment").
func rotateMisaligned32(word, addr uint32) uint32 {
	rotate := (addr & 3) * 8
	if rotate == 0 {
		return word
	}
	return (word >> rotate) | (word << (32 - rotate))
}

// halfwordTransfer implements LDRH/STRH/LDRSB/LDRSH and their immediate or
// register offset forms (opcode[7:4] bit6/bit5 select signedness/width;
// spec §4.1 "Load/store").
func (c *CPU) halfwordTransfer(opcode uint32) uint32 {
	rd := int((opcode >> 12) & 0xF)
	rn := int((opcode >> 16) & 0xF)
	loadBit := opcode&0x00100000 != 0
	immBit := opcode&0x00400000 != 0
	sBit := opcode&0x40 != 0
	hBit := opcode&0x20 != 0

	var offset uint32
	if immBit {
		offset = ((opcode >> 4) & 0xF0) | (opcode & 0xF)
	} else {
		offset = c.R(int(opcode & 0xF))
	}

	addr, wb := c.transferAddress(opcode, offset)
	c.writeBaseIfNeeded(opcode, rn, wb, true)

	if loadBit {
		var value uint32
		switch {
		case sBit && hBit: // LDRSH
			value = uint32(int32(int16(c.bus.Read16(addr &^ 1))))
		case sBit && !hBit: // LDRSB
			value = uint32(int32(int8(c.bus.Read8(addr))))
		default: // LDRH
			value = uint32(c.bus.Read16(addr &^ 1))
		}
		c.SetR(rd, value)
		return 3
	}

	// STRH (the only valid store form at this encoding slot).
	c.bus.Write16(addr&^1, uint16(c.R(rd)))
	return 2
}

// swap implements SWP/SWPB: an atomic-by-definition (single CPU) read-
// modify-write (spec §4.1 "SWP").
func (c *CPU) swap(opcode uint32) uint32 {
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)
	rm := int(opcode & 0xF)
	byteBit := opcode&0x00400000 != 0
	addr := c.R(rn)

	if byteBit {
		old := c.bus.Read8(addr)
		c.bus.Write8(addr, uint8(c.R(rm)))
		c.SetR(rd, uint32(old))
	} else {
		old := rotateMisaligned32(c.bus.Read32(addr&^3), addr)
		c.bus.Write32(addr&^3, c.R(rm))
		c.SetR(rd, old)
	}
	return 4
}
