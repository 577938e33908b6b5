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

// thumbShiftImm implements format 1: LSL/LSR/ASR Rd, Rm, #imm5.
func (c *CPU) thumbShiftImm(opcode uint16) uint32 {
	op := (opcode >> 11) & 0x3
	amount := uint32((opcode >> 6) & 0x1F)
	rm := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	var result uint32
	var carry, carryValid bool
	switch op {
	case 0:
		result, carry, carryValid = shiftLSLImm(c.R(rm), amount)
	case 1:
		result, carry, carryValid = shiftLSRImm(c.R(rm), amount)
	default:
		result, carry, carryValid = shiftASRImm(c.R(rm), amount)
	}
	if carryValid {
		c.setFlag(flagC, carry)
	}
	c.setNZ(result)
	c.SetR(rd, result)
	return 1
}

// thumbAddSubRegImm implements format 2: ADD/SUB Rd, Rs, Rn|#imm3.
func (c *CPU) thumbAddSubRegImm(opcode uint16) uint32 {
	immFlag := opcode&0x0400 != 0
	subFlag := opcode&0x0200 != 0
	rnOrImm := uint32((opcode >> 6) & 0x7)
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	var operand uint32
	if immFlag {
		operand = rnOrImm
	} else {
		operand = c.R(int(rnOrImm))
	}

	var result uint32
	if subFlag {
		result = c.subWithFlags(c.R(rs), operand, true)
	} else {
		result = c.addWithFlags(c.R(rs), operand, 0, true)
	}
	c.SetR(rd, result)
	return 1
}

// thumbImmOp implements format 3: MOV/CMP/ADD/SUB Rd, #imm8.
func (c *CPU) thumbImmOp(opcode uint16) uint32 {
	op := (opcode >> 11) & 0x3
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode & 0xFF)

	switch op {
	case 0: // MOV
		c.setNZ(imm)
		c.SetR(rd, imm)
	case 1: // CMP
		c.subWithFlags(c.R(rd), imm, true)
	case 2: // ADD
		c.SetR(rd, c.addWithFlags(c.R(rd), imm, 0, true))
	case 3: // SUB
		c.SetR(rd, c.subWithFlags(c.R(rd), imm, true))
	}
	return 1
}

// thumbALU implements format 4: the 16 two-operand ALU/shift ops over the
// low registers.
func (c *CPU) thumbALU(opcode uint16) uint32 {
	op := (opcode >> 6) & 0xF
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)
	a := c.R(rd)
	b := c.R(rs)

	switch op {
	case 0x0: // AND
		c.SetR(rd, a&b)
		c.setNZ(a & b)
	case 0x1: // EOR
		c.SetR(rd, a^b)
		c.setNZ(a ^ b)
	case 0x2: // LSL
		r, carry, valid := shiftLSLReg(a, b&0xFF)
		if valid {
			c.setFlag(flagC, carry)
		}
		c.setNZ(r)
		c.SetR(rd, r)
		return 2
	case 0x3: // LSR
		r, carry, valid := shiftLSRReg(a, b&0xFF)
		if valid {
			c.setFlag(flagC, carry)
		}
		c.setNZ(r)
		c.SetR(rd, r)
		return 2
	case 0x4: // ASR
		r, carry, valid := shiftASRReg(a, b&0xFF)
		if valid {
			c.setFlag(flagC, carry)
		}
		c.setNZ(r)
		c.SetR(rd, r)
		return 2
	case 0x5: // ADC
		c.SetR(rd, c.addWithFlags(a, b, b2u(c.C()), true))
	case 0x6: // SBC
		c.SetR(rd, c.sbcWithFlags(a, b, true))
	case 0x7: // ROR
		r, carry, valid := shiftRORReg(a, b&0xFF)
		if valid {
			c.setFlag(flagC, carry)
		}
		c.setNZ(r)
		c.SetR(rd, r)
		return 2
	case 0x8: // TST
		c.setNZ(a & b)
	case 0x9: // NEG
		c.SetR(rd, c.subWithFlags(0, b, true))
	case 0xA: // CMP
		c.subWithFlags(a, b, true)
	case 0xB: // CMN
		c.addWithFlags(a, b, 0, true)
	case 0xC: // ORR
		c.SetR(rd, a|b)
		c.setNZ(a | b)
	case 0xD: // MUL
		result := a * b
		c.setNZ(result)
		c.SetR(rd, result)
		return 2
	case 0xE: // BIC
		c.SetR(rd, a&^b)
		c.setNZ(a &^ b)
	case 0xF: // MVN
		c.SetR(rd, ^b)
		c.setNZ(^b)
	}
	return 1
}

// thumbHiRegBX implements format 5: ADD/CMP/MOV over any register 0-15,
// and BX/BLX Rm.
func (c *CPU) thumbHiRegBX(opcode uint16) uint32 {
	op := (opcode >> 8) & 0x3
	h1 := opcode&0x80 != 0
	h2 := opcode&0x40 != 0
	rs := int((opcode>>3)&0x7) + b2uInt(h2)*8
	rd := int(opcode&0x7) + b2uInt(h1)*8

	rsVal := c.R(rs)
	if rs == 15 {
		rsVal = c.pcRead()
	}

	switch op {
	case 0: // ADD
		result := c.R(rd) + rsVal
		if rd == 15 {
			c.SetR(15, result&^1)
			c.flushPipeline()
			return 3
		}
		c.SetR(rd, result)
	case 1: // CMP
		c.subWithFlags(c.R(rd), rsVal, true)
	case 2: // MOV
		if rd == 15 {
			c.SetR(15, rsVal&^1)
			c.flushPipeline()
			return 3
		}
		c.SetR(rd, rsVal)
	case 3: // BX / BLX
		if h1 {
			c.SetR(14, (c.pcRead()-2)|1)
		}
		c.WriteCPSRMasked(flagT, b2u(rsVal&1 != 0)*flagT)
		c.SetR(15, rsVal&^1)
		c.flushPipeline()
		return 3
	}
	return 1
}

func b2uInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// thumbPCRelLoad implements format 6: LDR Rd, [PC, #imm8*4].
func (c *CPU) thumbPCRelLoad(opcode uint16) uint32 {
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) * 4
	addr := (c.pcRead() &^ 3) + imm
	c.SetR(rd, c.bus.Read32(addr))
	return 3
}

// thumbLoadStoreReg implements formats 7/8: LDR/STR/LDRB/STRB/LDRH/STRH/
// LDSB/LDSH with register offset.
func (c *CPU) thumbLoadStoreReg(opcode uint16) uint32 {
	lBit := opcode&0x0800 != 0
	bBit := opcode&0x0400 != 0
	format8 := opcode&0x0200 != 0
	ro := int((opcode >> 6) & 0x7)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)
	addr := c.R(rb) + c.R(ro)

	if !format8 {
		if lBit {
			if bBit {
				c.SetR(rd, uint32(c.bus.Read8(addr)))
			} else {
				c.SetR(rd, rotateMisaligned32(c.bus.Read32(addr&^3), addr))
			}
			return 3
		}
		if bBit {
			c.bus.Write8(addr, uint8(c.R(rd)))
		} else {
			c.bus.Write32(addr&^3, c.R(rd))
		}
		return 2
	}

	// format 8: STRH / LDRH / LDSB / LDSH selected by (bBit,lBit) pair.
	switch {
	case !bBit && !lBit: // STRH
		c.bus.Write16(addr&^1, uint16(c.R(rd)))
		return 2
	case !bBit && lBit: // LDRH
		c.SetR(rd, uint32(c.bus.Read16(addr&^1)))
	case bBit && !lBit: // LDSB
		c.SetR(rd, uint32(int32(int8(c.bus.Read8(addr)))))
	default: // LDSH
		c.SetR(rd, uint32(int32(int16(c.bus.Read16(addr&^1)))))
	}
	return 3
}

// thumbLoadStoreImm implements format 9: LDR/STR/LDRB/STRB with 5-bit
// immediate offset (scaled by 4 for word, 1 for byte).
func (c *CPU) thumbLoadStoreImm(opcode uint16) uint32 {
	bBit := opcode&0x1000 != 0
	lBit := opcode&0x0800 != 0
	imm := uint32((opcode >> 6) & 0x1F)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	var addr uint32
	if bBit {
		addr = c.R(rb) + imm
	} else {
		addr = c.R(rb) + imm*4
	}

	if lBit {
		if bBit {
			c.SetR(rd, uint32(c.bus.Read8(addr)))
		} else {
			c.SetR(rd, rotateMisaligned32(c.bus.Read32(addr&^3), addr))
		}
		return 3
	}
	if bBit {
		c.bus.Write8(addr, uint8(c.R(rd)))
	} else {
		c.bus.Write32(addr&^3, c.R(rd))
	}
	return 2
}

// thumbLoadStoreHalf implements format 10: LDRH/STRH Rd, [Rb, #imm5*2].
func (c *CPU) thumbLoadStoreHalf(opcode uint16) uint32 {
	lBit := opcode&0x0800 != 0
	imm := uint32((opcode>>6)&0x1F) * 2
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)
	addr := c.R(rb) + imm

	if lBit {
		c.SetR(rd, uint32(c.bus.Read16(addr&^1)))
		return 3
	}
	c.bus.Write16(addr&^1, uint16(c.R(rd)))
	return 2
}

// thumbSPRelLoadStore implements format 11: LDR/STR Rd, [SP, #imm8*4].
func (c *CPU) thumbSPRelLoadStore(opcode uint16) uint32 {
	lBit := opcode&0x0800 != 0
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) * 4
	addr := c.R(13) + imm

	if lBit {
		c.SetR(rd, rotateMisaligned32(c.bus.Read32(addr&^3), addr))
		return 3
	}
	c.bus.Write32(addr&^3, c.R(rd))
	return 2
}

// thumbLoadAddress implements format 12: ADD Rd, PC|SP, #imm8*4.
func (c *CPU) thumbLoadAddress(opcode uint16) uint32 {
	spBit := opcode&0x0800 != 0
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) * 4

	var base uint32
	if spBit {
		base = c.R(13)
	} else {
		base = c.pcRead() &^ 3
	}
	c.SetR(rd, base+imm)
	return 1
}

// thumbAddSPImm implements format 13: ADD/SUB SP, #imm7*4.
func (c *CPU) thumbAddSPImm(opcode uint16) uint32 {
	neg := opcode&0x80 != 0
	imm := uint32(opcode&0x7F) * 4
	if neg {
		c.SetR(13, c.R(13)-imm)
	} else {
		c.SetR(13, c.R(13)+imm)
	}
	return 1
}

// thumbPushPop implements format 14: PUSH/POP {rlist}{,LR/PC}.
func (c *CPU) thumbPushPop(opcode uint16) uint32 {
	lBit := opcode&0x0800 != 0
	rBit := opcode&0x0100 != 0
	list := uint32(opcode & 0xFF)
	count := bits.OnesCount32(list)
	if rBit {
		count++
	}

	sp := c.R(13)
	if lBit { // POP
		addr := sp
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) == 0 {
				continue
			}
			c.SetR(i, c.bus.Read32(addr&^3))
			addr += 4
		}
		if rBit {
			pc := c.bus.Read32(addr &^ 3)
			c.SetR(15, pc&^1)
			addr += 4
			c.flushPipeline()
		}
		c.SetR(13, addr)
		return uint32(2 + count)
	}

	// PUSH
	addr := sp - uint32(count)*4
	c.SetR(13, addr)
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		c.bus.Write32(addr&^3, c.R(i))
		addr += 4
	}
	if rBit {
		c.bus.Write32(addr&^3, c.R(14))
	}
	return uint32(1 + count)
}

// thumbMultipleLoadStore implements format 15: LDMIA/STMIA Rb!, {rlist}.
func (c *CPU) thumbMultipleLoadStore(opcode uint16) uint32 {
	lBit := opcode&0x0800 != 0
	rb := int((opcode >> 8) & 0x7)
	list := uint32(opcode & 0xFF)
	count := bits.OnesCount32(list)
	if count == 0 {
		count = 1
	}

	addr := c.R(rb)
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		if lBit {
			c.SetR(i, c.bus.Read32(addr&^3))
		} else {
			c.bus.Write32(addr&^3, c.R(i))
		}
		addr += 4
	}
	if !lBit || list&(1<<uint(rb)) == 0 {
		c.SetR(rb, addr)
	}
	return uint32(1 + count)
}

// thumbCondBranch implements formats 16/17: Bcc <label> and SWI #imm8.
func (c *CPU) thumbCondBranch(opcode uint16) uint32 {
	cond := uint32((opcode >> 8) & 0xF)
	if cond == 0xF {
		// Pre-adjust R15 by -4 (spec §4.1 "Exceptions" step 3) so Exception's
		// LR computation lands on the instruction after this one.
		c.SetR(15, c.R(15)-4)
		return c.Exception(VectorSWI)
	}
	nzcv := c.cpsr >> 28
	if conditionTable[(cond<<4)|nzcv] != condTrue {
		return 1
	}
	offset := signExtend8(uint32(opcode&0xFF)) << 1
	c.SetR(15, c.pcRead()+offset)
	c.flushPipeline()
	return 3
}

func signExtend8(v uint32) uint32 {
	if v&0x80 != 0 {
		return v | 0xFFFFFF00
	}
	return v
}

// thumbBranch implements format 18: unconditional B <label>.
func (c *CPU) thumbBranch(opcode uint16) uint32 {
	offset := signExtend11(uint32(opcode&0x7FF)) << 1
	c.SetR(15, c.pcRead()+offset)
	c.flushPipeline()
	return 3
}

func signExtend11(v uint32) uint32 {
	if v&0x400 != 0 {
		return v | 0xFFFFF800
	}
	return v
}

// thumbLongBranchPrefix implements format 19's first halfword: LR = PC +
// (sign-extended offset<<12).
func (c *CPU) thumbLongBranchPrefix(opcode uint16) uint32 {
	offset := signExtend11(uint32(opcode&0x7FF)) << 12
	c.SetR(14, c.pcRead()+offset)
	return 1
}

// thumbLongBranchSuffix implements format 19's second halfword: BL (THUMB
// target) or BLX (switches to ARM state), completing the call begun by the
// prefix halfword.
func (c *CPU) thumbLongBranchSuffix(opcode uint16) uint32 {
	offLow := uint32(opcode&0x7FF) << 1
	target := c.R(14) + offLow
	nextPC := (c.pcRead() - 2) | 1
	isBLX := (opcode>>11)&0x1F == 0b11101

	if isBLX {
		target &^= 3
		c.WriteCPSRMasked(flagT, 0)
	}
	c.SetR(14, nextPC)
	c.SetR(15, target)
	c.flushPipeline()
	return 3
}
