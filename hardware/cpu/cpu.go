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

// Package cpu implements the ARM9 interpreter (spec C10): a full ARMv5TE-class
// ARM and THUMB decoder/executor over banked registers, pipelined PC
// semantics, Q-flag saturation and the IRQ/exception entry model.
package cpu

import "github.com/Hydr8gon/GamePawd/logger"

// Bus is the memory interface the CPU requires. hardware/bus.Bus satisfies
// it directly; the interface exists so this package never imports bus
// (avoiding a dependency cycle with hardware/irq, which the bus wires in).
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// exceptionModes maps a vector (shifted right 2) to the mode it enters,
// reproducing Arm9::exception's static table: RESET, UND, SWI, PREFETCH
// ABORT, DATA ABORT, reserved, IRQ, FIQ.
var exceptionModes = [8]Mode{
	ModeSVC, ModeUND, ModeSVC, ModeABT, ModeABT, ModeSVC, ModeIRQ, ModeFIQ,
}

// Exception vectors (spec §4.1 "Exceptions").
const (
	VectorReset      uint8 = 0x00
	VectorUndefined  uint8 = 0x04
	VectorSWI        uint8 = 0x08
	VectorPrefetch   uint8 = 0x0C
	VectorDataAbort  uint8 = 0x10
	VectorIRQ        uint8 = 0x18
	VectorFIQ        uint8 = 0x1C
)

// CPU is the ARM9 interpreter's entire architectural state.
type CPU struct {
	bus  Bus
	regs registerFile
	cpsr uint32

	pipeline [2]uint32

	armTable   [4096]armHandler
	thumbTable [1024]thumbHandler
}

// New creates a CPU bound to bus for all instruction fetches and
// load/store traffic. Call Reset before running.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.armTable = buildARMTable()
	c.thumbTable = buildThumbTable()
	return c
}

// Reset puts the CPU in its post-boot state: SVC mode, IRQs disabled, ARM
// state, PC at 0, pipeline filled.
func (c *CPU) Reset() {
	c.regs.reset()
	c.cpsr = 0
	c.SetCPSR(0xD3, false) // SVC, IRQ disabled (matches Arm9::reset's setCpsr(0xD3))
	c.flushPipeline()
}

// PC returns R15 as currently stored (the "two fetches ahead" pipeline
// value, not yet adjusted for the architectural +8/+4 read bias).
func (c *CPU) PC() uint32 { return c.regs.R(15) }

// R reads general register i (0-15).
func (c *CPU) R(i int) uint32 { return c.regs.R(i) }

// SetR writes general register i (0-15).
func (c *CPU) SetR(i int, v uint32) { c.regs.SetR(i, v) }

// pcRead returns R15 as an instruction would read it as Rm/Rn/Rd: "address
// of current instruction + 8" in ARM mode, "+4" in THUMB mode (spec §3
// "CPU register file"). The stored PC is already two fetches ahead of the
// current instruction, so no further bias is needed beyond state-dependent
// difference.
func (c *CPU) pcRead() uint32 {
	return c.regs.R(15)
}

// pcReadShiftByReg returns R15 as read by a register-specified shift
// amount operand: architectural "+8" becomes "+12" (spec §4.1 "Addressing
// mode helpers").
func (c *CPU) pcReadShiftByReg() uint32 {
	if c.Thumb() {
		return c.regs.R(15) + 2
	}
	return c.regs.R(15) + 4
}

// RunOpcode executes exactly one architectural instruction from the
// current pipeline and returns its cycle cost (spec §4.1 "Entry point").
func (c *CPU) RunOpcode() uint32 {
	opcode := c.pipeline[0]
	c.pipeline[0] = c.pipeline[1]

	if c.Thumb() {
		pc := c.regs.R(15) + 2
		c.regs.SetR(15, pc)
		c.pipeline[1] = uint32(c.bus.Read16(pc))
		return c.thumbTable[(opcode>>6)&0x3FF](c, uint16(opcode))
	}

	pc := c.regs.R(15) + 4
	c.regs.SetR(15, pc)
	c.pipeline[1] = c.bus.Read32(pc)

	cond := (opcode >> 28) & 0xF
	nzcv := c.cpsr >> 28
	switch conditionTable[(cond<<4)|nzcv] {
	case condFalse:
		return 1
	case condEscape:
		if opcode&0x0E000000 == 0x0A000000 {
			return c.blxImm(opcode)
		}
		return c.unknownARM(opcode)
	default:
		index := ((opcode >> 16) & 0xFF0) | ((opcode >> 4) & 0xF)
		return c.armTable[index](c, opcode)
	}
}

// flushPipeline adjusts PC and refills the two-slot prefetch shadow after
// any non-sequential change to R15 (spec Glossary "Pipeline refill").
func (c *CPU) flushPipeline() {
	if c.Thumb() {
		pc := (c.regs.R(15) &^ 1) + 2
		c.regs.SetR(15, pc)
		c.pipeline[0] = uint32(c.bus.Read16(pc - 2))
		c.pipeline[1] = uint32(c.bus.Read16(pc))
		return
	}
	pc := (c.regs.R(15) &^ 3) + 4
	c.regs.SetR(15, pc)
	c.pipeline[0] = c.bus.Read32(pc - 4)
	c.pipeline[1] = c.bus.Read32(pc)
}

// Exception enters the exception at vector, switching mode, saving SPSR,
// disabling IRQs, forcing ARM state, computing the return address and
// refilling the pipeline (spec §4.1 "Exceptions"). Returns cost 3.
func (c *CPU) Exception(vector uint8) uint32 {
	newMode := exceptionModes[vector>>2]
	oldCPSR := c.cpsr
	oldT := c.Thumb()

	c.SetCPSR((oldCPSR&^(modeMask))|uint32(newMode), false)
	c.regs.setCurrentSPSR(oldCPSR)

	newCPSR := (c.cpsr &^ (flagT | flagI)) | flagI | uint32(newMode)
	c.cpsr = newCPSR

	var lr uint32
	if oldT {
		lr = c.regs.R(15) + 2
	} else {
		lr = c.regs.R(15)
	}
	c.regs.SetR(14, lr)
	c.regs.SetR(15, uint32(vector))
	c.flushPipeline()
	return 3
}

// unknownARM logs an unrecognised ARM opcode and costs 1 cycle without
// altering CPSR (spec §7 item 1).
func (c *CPU) unknownARM(opcode uint32) uint32 {
	logger.Logf(logger.Allow, "arm9", "unknown ARM opcode: 0x%08X", opcode)
	return 1
}

// unknownThumb logs an unrecognised THUMB opcode and costs 1 cycle.
func (c *CPU) unknownThumb(opcode uint16) uint32 {
	logger.Logf(logger.Allow, "arm9", "unknown THUMB opcode: 0x%04X", opcode)
	return 1
}
