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

// Package irq implements the priority-masked interrupt controller (spec C2):
// 32 lines, each with a 4-bit priority and a mask bit, a pending-request
// bitmap, a derived enable bitmap, a 4-bit priority mask and the index of the
// last interrupt taken.
package irq

import "github.com/Hydr8gon/GamePawd/hardware/scheduler"

// irqVector is the ARM9 IRQ exception vector (spec §4.1 "exception").
const irqVector = 0x18

// Exceptioner is the subset of the CPU the controller needs: entering the
// IRQ exception. Implemented by hardware/cpu.CPU; the interface exists so
// this package never imports cpu.
type Exceptioner interface {
	Exception(vector uint8) uint32
	IRQDisabled() bool
	PC() uint32
	SetR(i int, v uint32)
}

// Controller is the interrupt controller.
type Controller struct {
	cpu Exceptioner
	sch *scheduler.Scheduler

	lines         [32]uint32 // per-line priority (bits 3:0) and mask bit (bit 6)
	requestFlags  uint32
	priorityMask  uint32
	irqIndex      uint32
}

// New creates a Controller bound to cpu for exception entry and sch for the
// one-cycle-deferred recheck (spec §4.3 "Scheduling note").
func New(cpu Exceptioner, sch *scheduler.Scheduler) *Controller {
	return &Controller{cpu: cpu, sch: sch}
}

// Reset zeroes all interrupt state.
func (c *Controller) Reset() {
	for i := range c.lines {
		c.lines[i] = 0
	}
	c.requestFlags = 0
	c.priorityMask = 0
	c.irqIndex = 0
}

func (c *Controller) enableMask() uint32 {
	var mask uint32
	for i := range c.lines {
		if c.lines[i]&0x40 == 0 {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

func (c *Controller) priority(line int) uint32 {
	return c.lines[line] & 0xF
}

// RequestIRQ marks line n pending and schedules a recheck one cycle from
// now, deferring exception entry so it never happens mid-instruction (spec
// §4.3 "Scheduling note", §5 "Ordering").
func (c *Controller) RequestIRQ(n int) {
	c.requestFlags |= 1 << uint(n)
	c.sch.Schedule(c.CheckIRQs, 1)
}

// CheckIRQs selects the lowest-numbered eligible line, if any, records it as
// irqIndex and enters the CPU's IRQ exception.
func (c *Controller) CheckIRQs() {
	if c.cpu.IRQDisabled() {
		return
	}
	eligible := c.enableMask() & c.requestFlags
	if eligible == 0 || c.priorityMask == 0 {
		return
	}
	for n := 0; n < 32; n++ {
		if eligible&(1<<uint(n)) == 0 {
			continue
		}
		if c.priority(n) >= c.priorityMask {
			continue
		}
		c.irqIndex = uint32(n)
		// Pre-adjust R15 by -4 (spec §4.1 "Exceptions" step 3) so Exception's
		// LR computation lands on the instruction that was about to run.
		c.cpu.SetR(15, c.cpu.PC()-4)
		c.cpu.Exception(irqVector)
		return
	}
}

// ReadEnable reads one line's enable/priority register.
func (c *Controller) ReadEnable(n int) uint32 { return c.lines[n] }

// WriteEnable writes the masked bits of one line's enable/priority register
// and schedules a recheck, since enabling a line can make it eligible.
func (c *Controller) WriteEnable(n int, mask, value uint32) {
	c.lines[n] = (c.lines[n] &^ mask) | (value & mask)
	c.sch.Schedule(c.CheckIRQs, 1)
}

// ReadIndex reads the last interrupt line serviced.
func (c *Controller) ReadIndex() uint32 { return c.irqIndex }

// ReadPriorityMask reads the priority mask without side effects.
func (c *Controller) ReadPriorityMask() uint32 { return c.priorityMask }

// ReadAndClearPriorityMask implements the read-and-clear mirror register
// (spec §4.3 "a priority mask ... read-and-clear variant exposed").
func (c *Controller) ReadAndClearPriorityMask() uint32 {
	v := c.priorityMask
	c.priorityMask = 0
	return v
}

// WritePriorityMask writes the masked bits of the priority mask, implicitly
// acknowledging (clearing the pending bit of) the most recently recorded
// irqIndex, then schedules a recheck (spec §4.3).
func (c *Controller) WritePriorityMask(mask, value uint32) {
	mask &= 0xF
	c.priorityMask = (c.priorityMask &^ mask) | (value & mask)
	c.requestFlags &^= 1 << c.irqIndex
	c.sch.Schedule(c.CheckIRQs, 1)
}

// WritePriorityMaskShadow is the second MMIO offset that aliases
// WritePriorityMask (spec Design Notes, "Interrupt priority two writes").
func (c *Controller) WritePriorityMaskShadow(mask, value uint32) {
	c.WritePriorityMask(mask, value)
}
