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

package timers_test

import (
	"testing"

	"github.com/Hydr8gon/GamePawd/hardware/timers"
	"github.com/Hydr8gon/GamePawd/internal/runtest"
)

type fakeIRQ struct {
	requested []int
}

func (f *fakeIRQ) RequestIRQ(line int) { f.requested = append(f.requested, line) }

func TestTimerFiresAtTargetAndResets(t *testing.T) {
	irq := &fakeIRQ{}
	tm := timers.New(irq)
	tm.SetTarget(0, 4)
	tm.SetEnable(0, true)

	for i := 0; i < 3; i++ {
		tm.Tick()
	}
	runtest.ExpectEquality(t, len(irq.requested), 0)

	tm.Tick()
	runtest.ExpectEquality(t, irq.requested, []int{0})
	runtest.ExpectEquality(t, tm.Value(0), uint32(0))
}

func TestDisableResetsRaw(t *testing.T) {
	irq := &fakeIRQ{}
	tm := timers.New(irq)
	tm.SetTarget(0, 100)
	tm.SetEnable(0, true)
	for i := 0; i < 10; i++ {
		tm.Tick()
	}
	tm.SetEnable(0, false)
	runtest.ExpectEquality(t, tm.Value(0), uint32(0))
}

func TestEnableEdgeStartsCountingFromZero(t *testing.T) {
	irq := &fakeIRQ{}
	tm := timers.New(irq)
	tm.SetTarget(1, 50)
	tm.SetEnable(1, true)
	runtest.ExpectEquality(t, tm.Value(1), uint32(0))
}

func TestShiftRescalePreservesVisibleValue(t *testing.T) {
	irq := &fakeIRQ{}
	tm := timers.New(irq)
	tm.SetTarget(0, 1000)
	tm.SetEnable(0, true)
	for i := 0; i < 20; i++ {
		tm.Tick()
	}
	before := tm.Value(0)
	tm.SetShift(0, 4)
	runtest.ExpectEquality(t, tm.Value(0), before)
}

func TestFreeRunningIncrementsEveryTick(t *testing.T) {
	irq := &fakeIRQ{}
	tm := timers.New(irq)
	for i := 0; i < 5; i++ {
		tm.Tick()
	}
	runtest.ExpectEquality(t, tm.FreeRunning(), uint32(5))
}

func TestTwoTimersIndependentIRQLines(t *testing.T) {
	irq := &fakeIRQ{}
	tm := timers.New(irq)
	tm.SetTarget(0, 1)
	tm.SetTarget(1, 1)
	tm.SetEnable(0, true)
	tm.SetEnable(1, true)
	tm.Tick()
	runtest.ExpectEquality(t, irq.requested, []int{0, 1})
}
