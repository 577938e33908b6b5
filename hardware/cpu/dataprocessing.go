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

// Data-processing opcodes, opcode[24:21].
const (
	opAND = 0x0
	opEOR = 0x1
	opSUB = 0x2
	opRSB = 0x3
	opADD = 0x4
	opADC = 0x5
	opSBC = 0x6
	opRSC = 0x7
	opTST = 0x8
	opTEQ = 0x9
	opCMP = 0xA
	opCMN = 0xB
	opORR = 0xC
	opMOV = 0xD
	opBIC = 0xE
	opMVN = 0xF
)

// operand2 resolves a data-processing instruction's second operand,
// returning (value, carryOut, carryValid) per the nine shifter forms (spec
// §4.1 "Addressing-mode helpers").
func (c *CPU) operand2(opcode uint32) (uint32, bool, bool) {
	if opcode&0x02000000 != 0 {
		return rotatedImmediate(opcode&0xFF, (opcode>>8)&0xF)
	}

	rm := int(opcode & 0xF)
	shiftType := (opcode >> 5) & 0x3

	var val uint32
	if rm == 15 {
		val = c.pcRead()
	} else {
		val = c.R(rm)
	}

	if opcode&0x10 != 0 {
		// Register-specified shift amount: LSB of Rs, PC reads as +12.
		if rm == 15 {
			val = c.pcReadShiftByReg()
		}
		rs := int((opcode >> 8) & 0xF)
		amount := c.R(rs) & 0xFF
		switch shiftType {
		case 0:
			return shiftLSLReg(val, amount)
		case 1:
			return shiftLSRReg(val, amount)
		case 2:
			return shiftASRReg(val, amount)
		default:
			return shiftRORReg(val, amount)
		}
	}

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

// dataProcessing executes one of the 16 ALU operations, applying the exact
// ARMv5 flag formulas from spec §4.1.
func (c *CPU) dataProcessing(opcode uint32) uint32 {
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)
	op := (opcode >> 21) & 0xF
	sBit := opcode&0x00100000 != 0

	op2, shiftCarry, shiftCarryValid := c.operand2(opcode)

	var rnVal uint32
	if rn == 15 {
		rnVal = c.pcRead()
	} else {
		rnVal = c.R(rn)
	}

	var result uint32
	writesResult := true

	switch op {
	case opAND:
		result = rnVal & op2
	case opEOR:
		result = rnVal ^ op2
	case opSUB:
		result = c.subWithFlags(rnVal, op2, sBit)
	case opRSB:
		result = c.subWithFlags(op2, rnVal, sBit)
	case opADD:
		result = c.addWithFlags(rnVal, op2, 0, sBit)
	case opADC:
		result = c.addWithFlags(rnVal, op2, b2u(c.C()), sBit)
	case opSBC:
		result = c.sbcWithFlags(rnVal, op2, sBit)
	case opRSC:
		result = c.sbcWithFlags(op2, rnVal, sBit)
	case opTST:
		result = rnVal & op2
		writesResult = false
	case opTEQ:
		result = rnVal ^ op2
		writesResult = false
	case opCMP:
		c.subWithFlags(rnVal, op2, true)
		writesResult = false
	case opCMN:
		c.addWithFlags(rnVal, op2, 0, true)
		writesResult = false
	case opORR:
		result = rnVal | op2
	case opMOV:
		result = op2
	case opBIC:
		result = rnVal &^ op2
	case opMVN:
		result = ^op2
	}

	if sBit && (op == opTST || op == opTEQ || op == opAND || op == opEOR ||
		op == opORR || op == opMOV || op == opBIC || op == opMVN) {
		c.setNZ(result)
		if shiftCarryValid {
			c.setFlag(flagC, shiftCarry)
		}
	}

	if writesResult {
		if rd == 15 {
			if sBit {
				// MOVS/ALU-S writing PC restores CPSR from SPSR (mode return).
				if spsr, ok := c.SPSR(); ok {
					c.SetCPSR(spsr, false)
				}
			}
			c.SetR(15, result)
			c.flushPipeline()
			return 3
		}
		c.SetR(rd, result)
	}
	return 1
}

func (c *CPU) subWithFlags(a, b uint32, s bool) uint32 {
	result := a - b
	if s {
		c.setNZ(result)
		c.setFlag(flagC, a >= b)
		c.setFlag(flagV, ((a^b)&(a^result))&0x80000000 != 0)
	}
	return result
}

func (c *CPU) addWithFlags(a, b, carryIn uint32, s bool) uint32 {
	sum := uint64(a) + uint64(b) + uint64(carryIn)
	result := uint32(sum)
	if s {
		c.setNZ(result)
		c.setFlag(flagC, sum > 0xFFFFFFFF)
		c.setFlag(flagV, (^(a^b)&(a^result))&0x80000000 != 0)
	}
	return result
}

func (c *CPU) sbcWithFlags(a, b uint32, s bool) uint32 {
	carryIn := b2u(c.C())
	diff := uint64(a) - uint64(b) - uint64(1-carryIn)
	result := uint32(diff)
	if s {
		c.setNZ(result)
		c.setFlag(flagC, uint64(a) >= uint64(b)+uint64(1-carryIn))
		c.setFlag(flagV, ((a^b)&(a^result))&0x80000000 != 0)
	}
	return result
}

// psrTransfer implements MRS (Rd = CPSR/SPSR) and MSR (field-masked write
// to CPSR/SPSR, register or rotated-immediate source) — spec §4.1 "Status
// register access".
func (c *CPU) psrTransfer(opcode uint32) uint32 {
	useSPSR := opcode&0x00400000 != 0
	isMSR := opcode&0x00200000 != 0

	if !isMSR {
		rd := int((opcode >> 12) & 0xF)
		if useSPSR {
			v, _ := c.SPSR()
			c.SetR(rd, v)
		} else {
			c.SetR(rd, c.CPSR())
		}
		return 1
	}

	var fieldMask uint32
	if opcode&0x00080000 != 0 {
		fieldMask |= 0xFF000000 // flags byte
	}
	if opcode&0x00040000 != 0 {
		fieldMask |= 0x00FF0000
	}
	if opcode&0x00020000 != 0 {
		fieldMask |= 0x0000FF00
	}
	if opcode&0x00010000 != 0 {
		fieldMask |= 0x000000FF
	}

	var value uint32
	if opcode&0x02000000 != 0 {
		value, _, _ = rotatedImmediate(opcode&0xFF, (opcode>>8)&0xF)
	} else {
		value = c.R(int(opcode & 0xF))
	}

	if useSPSR {
		c.WriteSPSRMasked(fieldMask, value)
	} else {
		c.WriteCPSRMasked(fieldMask, value)
	}
	return 1
}
