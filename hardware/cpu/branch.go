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

// branchImm implements B and BL: opcode[24] selects link, a signed 24-bit
// word offset is sign-extended and shifted left 2 (spec §4.1 "Branch").
func (c *CPU) branchImm(opcode uint32) uint32 {
	offset := signExtend24(opcode&0xFFFFFF) << 2
	if opcode&0x01000000 != 0 {
		c.SetR(14, c.pcRead()-4)
	}
	c.SetR(15, c.pcRead()+offset)
	c.flushPipeline()
	return 3
}

// blxImm implements the unconditional BLX <label> encoding (cond==1111,
// opcode[27:25]==101): as branchImm but with an extra H bit contributing
// bit1 of the target and forcing THUMB state (spec §4.1 "BLX").
func (c *CPU) blxImm(opcode uint32) uint32 {
	offset := signExtend24(opcode&0xFFFFFF) << 2
	h := (opcode >> 24) & 0x1
	c.SetR(14, c.pcRead()-4)
	c.WriteCPSRMasked(flagT, flagT)
	c.SetR(15, c.pcRead()+offset+h*2)
	c.flushPipeline()
	return 3
}

// bxBlx implements BX Rm and BLX Rm (opcode[7:4]==0001 or 0011 in the
// branch-and-exchange slot of the data-processing space), switching
// instruction state from Rm bit 0.
func (c *CPU) bxBlx(opcode uint32) uint32 {
	rm := int(opcode & 0xF)
	target := c.R(rm)
	link := opcode&0x00000010 != 0 && (opcode>>4)&0xF == 0x3
	if link {
		c.SetR(14, c.pcRead()-4)
	}
	c.WriteCPSRMasked(flagT, b2u(target&1 != 0)*flagT)
	c.SetR(15, target&^1)
	c.flushPipeline()
	return 3
}

func signExtend24(v uint32) uint32 {
	if v&0x800000 != 0 {
		return v | 0xFF000000
	}
	return v
}

// swi implements the SWI instruction: entry is via the normal exception
// path (spec §4.1 "Exceptions"). R15 is pre-adjusted by -4 so that
// Exception's LR computation lands on the instruction after this one.
func (c *CPU) swi(opcode uint32) uint32 {
	c.SetR(15, c.R(15)-4)
	return c.Exception(VectorSWI)
}

// coprocRegTransfer stubs MCR/MRC against the always-present CP15: reads
// return 0, writes are silently dropped (spec §4.1 "CP15 stub").
func (c *CPU) coprocRegTransfer(opcode uint32) uint32 {
	if opcode&0x00100000 != 0 { // MRC
		rd := int((opcode >> 12) & 0xF)
		c.SetR(rd, 0)
	}
	return 1
}

// coprocDataTransfer stubs LDC/STC: no coprocessor on this core implements
// memory-mapped transfer, so the access is a silent no-op.
func (c *CPU) coprocDataTransfer(opcode uint32) uint32 {
	return 1
}
