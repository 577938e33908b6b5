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

package irq_test

import (
	"testing"

	"github.com/Hydr8gon/GamePawd/hardware/irq"
	"github.com/Hydr8gon/GamePawd/hardware/scheduler"
	"github.com/Hydr8gon/GamePawd/internal/runtest"
)

type fakeCPU struct {
	disabled   bool
	exceptions []uint8
	pc         uint32
}

func (f *fakeCPU) Exception(vector uint8) uint32 {
	f.exceptions = append(f.exceptions, vector)
	return 3
}

func (f *fakeCPU) IRQDisabled() bool { return f.disabled }

func (f *fakeCPU) PC() uint32 { return f.pc }

func (f *fakeCPU) SetR(i int, v uint32) {
	if i == 15 {
		f.pc = v
	}
}

func TestLowestNumberedEligibleLineWins(t *testing.T) {
	sch := scheduler.New()
	cpu := &fakeCPU{}
	c := irq.New(cpu, sch)

	c.WriteEnable(3, 0xFF, 0x1) // priority 1
	c.WriteEnable(5, 0xFF, 0x1) // priority 1
	c.RequestIRQ(5)
	c.RequestIRQ(3)
	c.WritePriorityMask(0xF, 0xF) // unmask everything, allow priority < F

	c.CheckIRQs()
	runtest.ExpectEquality(t, cpu.exceptions, []uint8{0x18})
	runtest.ExpectEquality(t, c.ReadIndex(), uint32(3))
}

func TestMaskedLineNeverFires(t *testing.T) {
	sch := scheduler.New()
	cpu := &fakeCPU{}
	c := irq.New(cpu, sch)

	c.WriteEnable(2, 0xFF, 0x40) // bit6 set -> masked out of enableMask
	c.RequestIRQ(2)
	c.WritePriorityMask(0xF, 0xF)

	c.CheckIRQs()
	runtest.ExpectEquality(t, len(cpu.exceptions), 0)
}

func TestGlobalIRQDisableSuppressesCheck(t *testing.T) {
	sch := scheduler.New()
	cpu := &fakeCPU{disabled: true}
	c := irq.New(cpu, sch)

	c.WriteEnable(0, 0xFF, 0x1)
	c.RequestIRQ(0)
	c.WritePriorityMask(0xF, 0xF)

	c.CheckIRQs()
	runtest.ExpectEquality(t, len(cpu.exceptions), 0)
}

func TestWritingPriorityMaskAcknowledgesLastIndex(t *testing.T) {
	sch := scheduler.New()
	cpu := &fakeCPU{}
	c := irq.New(cpu, sch)

	c.WriteEnable(7, 0xFF, 0x1)
	c.RequestIRQ(7)
	c.WritePriorityMask(0xF, 0xF)
	c.CheckIRQs()
	runtest.ExpectEquality(t, c.ReadIndex(), uint32(7))

	// writing the priority mask again acks line 7; a second CheckIRQs with
	// nothing else pending must not re-fire
	c.WritePriorityMask(0xF, 0xF)
	cpu.exceptions = nil
	c.CheckIRQs()
	runtest.ExpectEquality(t, len(cpu.exceptions), 0)
}

func TestReadAndClearPriorityMask(t *testing.T) {
	sch := scheduler.New()
	cpu := &fakeCPU{}
	c := irq.New(cpu, sch)

	c.WritePriorityMask(0xF, 0x5)
	runtest.ExpectEquality(t, c.ReadPriorityMask(), uint32(0x5))
	runtest.ExpectEquality(t, c.ReadAndClearPriorityMask(), uint32(0x5))
	runtest.ExpectEquality(t, c.ReadPriorityMask(), uint32(0))
}
