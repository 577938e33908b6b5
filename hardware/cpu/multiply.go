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

// multiply dispatches the MUL/MLA/UMULL/UMLAL/SMULL/SMLAL family and the
// ARMv5TE signed halfword multiplies (SMULxy/SMLAxy/SMULWy/SMLAWy/
// SMLALxy), selected by opcode[24:21] and, for the halfword forms,
// opcode[7:4] (spec §4.1 "Multiply").
func (c *CPU) multiply(opcode uint32) uint32 {
	if opcode&0x90 == 0x80 {
		return c.signedHalfwordMultiply(opcode)
	}

	op := (opcode >> 21) & 0xF
	sBit := opcode&0x00100000 != 0
	rd := int((opcode >> 16) & 0xF)
	rn := int((opcode >> 12) & 0xF)
	rs := int((opcode >> 8) & 0xF)
	rm := int(opcode & 0xF)

	switch op {
	case 0x0: // MUL
		result := c.R(rm) * c.R(rs)
		c.SetR(rd, result)
		if sBit {
			c.setNZ(result)
			return 4
		}
		return 2
	case 0x1: // MLA
		result := c.R(rm)*c.R(rs) + c.R(rn)
		c.SetR(rd, result)
		if sBit {
			c.setNZ(result)
			return 4
		}
		return 3
	case 0x4, 0x5, 0x6, 0x7: // UMULL, UMLAL, SMULL, SMLAL
		signed := op >= 0x6
		var product uint64
		if signed {
			product = uint64(int64(int32(c.R(rm))) * int64(int32(c.R(rs))))
		} else {
			product = uint64(c.R(rm)) * uint64(c.R(rs))
		}
		if op == 0x5 || op == 0x7 {
			product += uint64(c.R(rd))<<32 | uint64(c.R(rn))
		}
		lo := uint32(product)
		hi := uint32(product >> 32)
		c.SetR(rn, lo)
		c.SetR(rd, hi)
		if sBit {
			c.setFlag(flagN, hi&0x80000000 != 0)
			c.setFlag(flagZ, product == 0)
			return 5
		}
		return 3
	}
	return c.unknownARM(opcode)
}

// signedHalfwordMultiply implements the ARMv5TE DSP extension multiplies
// (opcode[24:21] selects the family, opcode[6:5] selects x/y halfword
// sign, bit7=1 bit4=0 distinguishes this family from plain MUL/MLA).
func (c *CPU) signedHalfwordMultiply(opcode uint32) uint32 {
	rd := int((opcode >> 16) & 0xF)
	rn := int((opcode >> 12) & 0xF)
	rs := int((opcode >> 8) & 0xF)
	rm := int(opcode & 0xF)
	xBit := opcode&0x20 != 0
	yBit := opcode&0x40 != 0

	half := func(v uint32, top bool) int32 {
		if top {
			return int32(int16(v >> 16))
		}
		return int32(int16(v))
	}

	op := (opcode >> 21) & 0xF
	switch op {
	case 0x8: // SMLAxy
		product := half(c.R(rm), xBit) * half(c.R(rs), yBit)
		sum, overflow := addOverflow32(uint32(product), c.R(rn))
		if overflow {
			c.setFlag(flagQ, true)
		}
		c.SetR(rd, sum)
		return 1
	case 0x9: // SMLAWy (bit5 clear) / SMULWy (bit5 set)
		product := int64(int32(c.R(rm))) * int64(half(c.R(rs), yBit))
		result := uint32(product >> 16)
		if opcode&0x20 == 0 { // SMLAWy (accumulate)
			sum, overflow := addOverflow32(result, c.R(rn))
			if overflow {
				c.setFlag(flagQ, true)
			}
			c.SetR(rd, sum)
		} else { // SMULWy
			c.SetR(rd, result)
		}
		return 1
	case 0xA: // SMLALxy
		product := int64(half(c.R(rm), xBit)) * int64(half(c.R(rs), yBit))
		acc := int64(uint64(c.R(rd))<<32 | uint64(c.R(rn)))
		acc += product
		c.SetR(rn, uint32(acc))
		c.SetR(rd, uint32(acc>>32))
		return 2
	case 0xB: // SMULxy
		product := half(c.R(rm), xBit) * half(c.R(rs), yBit)
		c.SetR(rd, uint32(product))
		return 1
	}
	return c.unknownARM(opcode)
}

func addOverflow32(a, b uint32) (uint32, bool) {
	sum := a + b
	overflow := (^(a^b) & (a ^ sum) & 0x80000000) != 0
	return sum, overflow
}

// saturatedAdd/Sub implement QADD/QSUB/QDADD/QDSUB (spec §4.1 "Saturating
// arithmetic"), selected by opcode[22:21] with bit[6:5]==00, bit4=1,
// bit7=0 (the same multiply-space encoding slot as the DSP multiplies).
func (c *CPU) saturatedArith(opcode uint32) uint32 {
	rd := int((opcode >> 12) & 0xF)
	rn := int((opcode >> 16) & 0xF)
	rm := int(opcode & 0xF)
	op := (opcode >> 21) & 0x3

	doubleRn := func() uint32 {
		v, overflow := addOverflow32(c.R(rn), c.R(rn))
		if overflow {
			c.setFlag(flagQ, true)
			if int32(c.R(rn)) < 0 {
				return 0x80000000
			}
			return 0x7FFFFFFF
		}
		return v
	}

	var result uint32
	switch op {
	case 0: // QADD
		var overflow bool
		result, overflow = addOverflow32(c.R(rm), c.R(rn))
		if overflow {
			c.setFlag(flagQ, true)
			if int32(c.R(rm)) < 0 {
				result = 0x80000000
			} else {
				result = 0x7FFFFFFF
			}
		}
	case 1: // QSUB
		b := ^c.R(rn) + 1
		var overflow bool
		result, overflow = addOverflow32(c.R(rm), b)
		if overflow {
			c.setFlag(flagQ, true)
			if int32(c.R(rm)) < 0 {
				result = 0x80000000
			} else {
				result = 0x7FFFFFFF
			}
		}
	case 2: // QDADD
		dbl := doubleRn()
		var overflow bool
		result, overflow = addOverflow32(c.R(rm), dbl)
		if overflow {
			c.setFlag(flagQ, true)
			if int32(c.R(rm)) < 0 {
				result = 0x80000000
			} else {
				result = 0x7FFFFFFF
			}
		}
	case 3: // QDSUB
		dbl := doubleRn()
		b := ^dbl + 1
		var overflow bool
		result, overflow = addOverflow32(c.R(rm), b)
		if overflow {
			c.setFlag(flagQ, true)
			if int32(c.R(rm)) < 0 {
				result = 0x80000000
			} else {
				result = 0x7FFFFFFF
			}
		}
	}
	c.SetR(rd, result)
	return 1
}

// clz implements CLZ Rd, Rm (spec §4.1 "CLZ").
func (c *CPU) clz(opcode uint32) uint32 {
	rd := int((opcode >> 12) & 0xF)
	rm := int(opcode & 0xF)
	v := c.R(rm)
	if v == 0 {
		c.SetR(rd, 32)
		return 1
	}
	n := uint32(0)
	for v&0x80000000 == 0 {
		v <<= 1
		n++
	}
	c.SetR(rd, n)
	return 1
}
