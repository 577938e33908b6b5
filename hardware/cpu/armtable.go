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

// armHandler executes one decoded ARM instruction and returns its cycle
// cost. Handlers re-decode the fields they need from the full opcode; the
// table index only selects which family handler runs (spec §3 "Dispatch
// tables").
type armHandler func(c *CPU, opcode uint32) uint32

// buildARMTable constructs the 4096-entry ARM dispatch table once, indexed
// by opcode[27:20]<<4 | opcode[7:4] (spec §3). Each index is classified by
// the bit pattern ARMv5 defines for that family; many indices share a
// single family handler that performs finer-grained decoding from the full
// opcode at call time.
func buildARMTable() [4096]armHandler {
	var table [4096]armHandler
	for idx := 0; idx < 4096; idx++ {
		table[idx] = classifyARM(uint32(idx))
	}
	return table
}

func classifyARM(idx uint32) armHandler {
	hi8 := (idx >> 4) & 0xFF // opcode[27:20]
	lo4 := idx & 0xF         // opcode[7:4]

	switch hi8 >> 6 { // opcode[27:26]
	case 0b00:
		return classifyDataBlock(hi8, lo4)
	case 0b01:
		if hi8&0x10 != 0 && lo4&0x1 != 0 {
			return (*CPU).unknownOrUndefined
		}
		return (*CPU).singleTransfer
	case 0b10:
		if hi8&0x20 != 0 {
			return (*CPU).branchImm
		}
		return (*CPU).blockTransfer
	default: // 0b11
		if hi8&0x30 == 0x30 {
			return (*CPU).swi
		}
		if hi8&0x01 != 0 {
			return (*CPU).coprocRegTransfer
		}
		return (*CPU).coprocDataTransfer
	}
}

// classifyDataBlock splits the opcode[27:26]==00 space: data processing,
// PSR transfer, multiply, swap, and halfword/signed transfer all live
// here, disambiguated by bit25 (immediate operand) and bits[7:4].
func classifyDataBlock(hi8, lo4 uint32) armHandler {
	bit25 := hi8&0x20 != 0 // I: immediate operand2
	opBits := (hi8 >> 1) & 0xF // opcode[24:21]

	if !bit25 && lo4 == 0x9 {
		if (hi8>>3)&0x3 == 0b10 {
			return (*CPU).swap
		}
		return (*CPU).multiply
	}
	if !bit25 && (lo4 == 0x5) && (hi8>>3)&0x3 == 0b10 {
		return (*CPU).saturatedArith
	}
	if !bit25 && lo4 == 0x1 && hi8 == 0x16 {
		return (*CPU).clz
	}
	if !bit25 && lo4 == 0x1 && hi8 == 0x12 {
		return (*CPU).bxBlx
	}
	if !bit25 && lo4 == 0x3 && hi8 == 0x12 {
		return (*CPU).bxBlx
	}
	if !bit25 && lo4&0x9 == 0x9 && lo4 != 0x9 {
		// SH/SB/SH variants: bit7=1,bit4=1, bit6 or bit5 set (LDRH/STRH/
		// LDRSB/LDRSH and their immediate-offset forms).
		return (*CPU).halfwordTransfer
	}
	if !bit25 && lo4&0x9 == 0x8 && (hi8>>3)&0x3 == 0b10 && hi8&0x1 == 0 {
		// ARMv5TE signed halfword multiplies: bits[7:4] = 1yx0.
		return (*CPU).multiply
	}
	sBit := hi8&0x1 != 0
	if opBits >= 0x8 && opBits <= 0xB && !sBit {
		return (*CPU).psrTransfer
	}
	return (*CPU).dataProcessing
}

func (c *CPU) unknownOrUndefined(opcode uint32) uint32 {
	return c.unknownARM(opcode)
}
