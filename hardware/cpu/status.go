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

// CPSR bit positions (spec §3 "CPSR").
const (
	flagN uint32 = 1 << 31
	flagZ uint32 = 1 << 30
	flagC uint32 = 1 << 29
	flagV uint32 = 1 << 28
	flagQ uint32 = 1 << 27
	flagI uint32 = 1 << 7
	flagT uint32 = 1 << 5
	modeMask uint32 = 0x1F
)

// N reports the CPSR negative flag.
func (c *CPU) N() bool { return c.cpsr&flagN != 0 }

// Z reports the CPSR zero flag.
func (c *CPU) Z() bool { return c.cpsr&flagZ != 0 }

// C reports the CPSR carry flag.
func (c *CPU) C() bool { return c.cpsr&flagC != 0 }

// V reports the CPSR overflow flag.
func (c *CPU) V() bool { return c.cpsr&flagV != 0 }

// Thumb reports whether the CPU is in THUMB state.
func (c *CPU) Thumb() bool { return c.cpsr&flagT != 0 }

// IRQDisabled implements irq.Exceptioner: whether CPSR.I is set.
func (c *CPU) IRQDisabled() bool { return c.cpsr&flagI != 0 }

// CurrentMode returns the CPSR mode field.
func (c *CPU) CurrentMode() Mode { return Mode(c.cpsr & modeMask) }

func (c *CPU) setFlag(mask uint32, set bool) {
	if set {
		c.cpsr |= mask
	} else {
		c.cpsr &^= mask
	}
}

// setNZ sets N and Z from a 32-bit ALU result.
func (c *CPU) setNZ(result uint32) {
	c.setFlag(flagN, result&0x80000000 != 0)
	c.setFlag(flagZ, result == 0)
}

// CPSR returns the raw current program status register.
func (c *CPU) CPSR() uint32 { return c.cpsr }

// SetCPSR installs value as CPSR, switching banked registers if the mode
// field changed. With save set, the old CPSR is first stored into the SPSR
// of the mode being left (before the banks are swapped), if that mode has
// one. Exception entry does not use save: Exception writes the new mode's
// SPSR itself.
//
// SetCPSR applies no user-mode restriction. WriteCPSRMasked does: in USR
// mode, writes to CPSR bits [7:0] only affect bits [7:5] (spec §4.1
// "Status register access"), so the mode field in bits [4:0] cannot be
// escaped by MSR from user mode.
func (c *CPU) SetCPSR(value uint32, save bool) {
	newMode := Mode(value & modeMask)
	if newMode != c.CurrentMode() {
		if save && c.regs.spsrValid {
			c.regs.setCurrentSPSR(c.cpsr)
		}
		c.regs.swapRegisters(newMode)
	} else if save && c.regs.spsrValid {
		c.regs.setCurrentSPSR(c.cpsr)
	}
	c.cpsr = value
}

// WriteCPSRMasked implements MSR's 8-bit-granular field mask onto CPSR,
// applying the user-mode mode-escape restriction described above.
func (c *CPU) WriteCPSRMasked(fieldMask uint32, value uint32) {
	mask := fieldMask
	if c.CurrentMode() == ModeUSR {
		// In user mode a write to byte 0 (bits [7:0], which carries I and T
		// alongside the mode field) only actually affects bits [7:5].
		mask = fieldMask &^ 0x000000FF
		mask |= fieldMask & 0x000000E0
	}
	newValue := (c.cpsr &^ mask) | (value & mask)
	c.SetCPSR(newValue, false)
}

// SPSR returns the current mode's saved program status register and
// whether one exists (false in USR/SYS).
func (c *CPU) SPSR() (uint32, bool) { return c.regs.currentSPSR() }

// WriteSPSRMasked implements MSR's 8-bit-granular field mask onto the
// current mode's SPSR. A no-op in USR/SYS, where there is no SPSR.
func (c *CPU) WriteSPSRMasked(fieldMask, value uint32) {
	cur, ok := c.regs.currentSPSR()
	if !ok {
		return
	}
	c.regs.setCurrentSPSR((cur &^ fieldMask) | (value & fieldMask))
}

// condition codes, standard ARMv5 encoding of opcode[31:28].
const (
	condEQ = 0x0
	condNE = 0x1
	condCS = 0x2
	condCC = 0x3
	condMI = 0x4
	condPL = 0x5
	condVS = 0x6
	condVC = 0x7
	condHI = 0x8
	condLS = 0x9
	condGE = 0xA
	condLT = 0xB
	condGT = 0xC
	condLE = 0xD
	condAL = 0xE
	condNV = 0xF
)

// conditionResult values stored in the 256-entry condition table (spec
// §3 "Dispatch tables").
const (
	condFalse  uint8 = 0
	condTrue   uint8 = 1
	condEscape uint8 = 2 // cond == 1111: BLX <label> / unconditional escape
)

// conditionTable is indexed by (cond<<4)|nzcv, built once at package
// initialisation (spec Design Notes).
var conditionTable [256]uint8

func init() {
	for cond := uint32(0); cond < 16; cond++ {
		for nzcv := uint32(0); nzcv < 16; nzcv++ {
			conditionTable[(cond<<4)|nzcv] = evaluateCondition(cond, nzcv)
		}
	}
}

func evaluateCondition(cond, nzcv uint32) uint8 {
	n := nzcv&0x8 != 0
	z := nzcv&0x4 != 0
	cy := nzcv&0x2 != 0
	v := nzcv&0x1 != 0

	var taken bool
	switch cond {
	case condEQ:
		taken = z
	case condNE:
		taken = !z
	case condCS:
		taken = cy
	case condCC:
		taken = !cy
	case condMI:
		taken = n
	case condPL:
		taken = !n
	case condVS:
		taken = v
	case condVC:
		taken = !v
	case condHI:
		taken = cy && !z
	case condLS:
		taken = !cy || z
	case condGE:
		taken = n == v
	case condLT:
		taken = n != v
	case condGT:
		taken = !z && n == v
	case condLE:
		taken = z || n != v
	case condAL:
		taken = true
	case condNV:
		return condEscape
	}
	if taken {
		return condTrue
	}
	return condFalse
}
