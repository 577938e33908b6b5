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

// Package timers implements the two independent down-to-target timers plus
// the free-running counter (spec §4.5).
package timers

// IRQRequester raises a line on the interrupt controller; satisfied by
// hardware/irq.Controller.
type IRQRequester interface {
	RequestIRQ(line int)
}

const (
	lineTimer0 int = 0
	lineTimer1 int = 1
)

// timer is one of the two down-to-target counters.
type timer struct {
	enabled bool
	shift   uint8  // prescale shift, 1..8 (encoded as 3 bits + 1)
	raw     uint64 // accumulator; 64-bit so prescaled comparisons stay exact
	target  uint32
	irqLine int
}

// Timers owns both down-to-target timers and the free-running counter.
type Timers struct {
	irq     IRQRequester
	t       [2]timer
	freeRun uint32
}

// New creates a Timers bound to irq for raising lines 0 and 1.
func New(irq IRQRequester) *Timers {
	t := &Timers{irq: irq}
	t.t[0].irqLine = lineTimer0
	t.t[1].irqLine = lineTimer1
	return t
}

// Reset clears both timers and the free-running counter.
func (t *Timers) Reset() {
	t.t[0] = timer{irqLine: lineTimer0}
	t.t[1] = timer{irqLine: lineTimer1}
	t.freeRun = 0
}

// Tick advances both timers and the free-running counter by one prescale
// step of the driving clock. Real hardware drives timers off a fixed base
// clock; the scheduler calls Tick at that cadence (see hardware/core).
func (t *Timers) Tick() {
	t.freeRun++
	for i := range t.t {
		t.tickOne(i)
	}
}

func (t *Timers) tickOne(i int) {
	tm := &t.t[i]
	if !tm.enabled {
		return
	}
	tm.raw++
	if uint32(tm.raw>>tm.shift) == tm.target {
		tm.raw = 0
		t.irq.RequestIRQ(tm.irqLine)
	}
}

// SetEnable starts or stops the timer. The disable edge clears raw, so an
// enabled timer counts up from 0 towards its target (spec §4.5); the enable
// edge leaves raw as it is.
func (t *Timers) SetEnable(i int, enabled bool) {
	tm := &t.t[i]
	if enabled == tm.enabled {
		return
	}
	if !enabled {
		tm.raw = 0
	}
	tm.enabled = enabled
}

// SetShift changes the prescale shift while rescaling raw so the visible
// (raw>>shift) value is preserved (spec §4.5 "Changing shift rescales raw").
func (t *Timers) SetShift(i int, shift uint8) {
	tm := &t.t[i]
	visible := tm.raw >> tm.shift
	tm.shift = shift
	tm.raw = visible << shift
}

// SetTarget writes the timer's target value.
func (t *Timers) SetTarget(i int, target uint32) {
	t.t[i].target = target
}

// Value returns the timer's visible (raw>>shift) value, for MMIO reads.
func (t *Timers) Value(i int) uint32 {
	return uint32(t.t[i].raw >> t.t[i].shift)
}

// FreeRunning returns the free-running counter's current value.
func (t *Timers) FreeRunning() uint32 { return t.freeRun }
