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

// Package core is the composition root: it owns the emulation thread, binds
// every peripheral's registers into the bus, and drives the CPU+scheduler
// loop (spec §4.4, §5).
package core

import (
	"sync/atomic"

	syscpu "golang.org/x/sys/cpu"

	"github.com/Hydr8gon/GamePawd/hardware/bus"
	"github.com/Hydr8gon/GamePawd/hardware/cpu"
	"github.com/Hydr8gon/GamePawd/hardware/display"
	"github.com/Hydr8gon/GamePawd/hardware/dma"
	"github.com/Hydr8gon/GamePawd/hardware/i2c"
	"github.com/Hydr8gon/GamePawd/hardware/irq"
	"github.com/Hydr8gon/GamePawd/hardware/scheduler"
	"github.com/Hydr8gon/GamePawd/hardware/spi"
	"github.com/Hydr8gon/GamePawd/hardware/timers"
	"github.com/Hydr8gon/GamePawd/hardware/wifi"
)

// frameEventCycles is the 60Hz display frame period: 108,000,000 / 60
// cycles (spec §4.6).
const frameEventCycles = 108_000_000 / 60

// hotCounters groups the emulation thread's cycle counters: arm9Cycles
// advances every opcode, globalCycles is only zeroed by Reset. Cacheline-padded to avoid false sharing with the
// display goroutine's mutex-guarded frame queue, the one state that
// crosses threads (spec §5).
type hotCounters struct {
	_            syscpu.CacheLinePad
	arm9Cycles   uint64
	globalCycles uint64
	_            syscpu.CacheLinePad
}

// Core owns every component and the emulation thread.
type Core struct {
	Bus       *bus.Bus
	CPU       *cpu.CPU
	Scheduler *scheduler.Scheduler
	IRQ       *irq.Controller
	Timers    *timers.Timers
	Display   *display.Display
	Spi       *spi.Spi
	Dma       *dma.Dma
	I2C       *i2c.I2C
	Wifi      *wifi.Wifi

	counters hotCounters
	running  atomic.Bool
}

// New wires every peripheral's registers into a fresh Bus and returns the
// assembled Core, following gopher2600's VCS composition pattern of
// building each chip then handing them to the shared memory map.
func New() *Core {
	b := bus.New()
	c := &Core{Bus: b}

	c.Scheduler = scheduler.New()
	c.CPU = cpu.New(b)
	c.IRQ = irq.New(c.CPU, c.Scheduler)
	c.Timers = timers.New(c.IRQ)
	c.Display = display.New(b, c.IRQ)
	c.Spi = spi.New(b, c.IRQ)
	c.Dma = dma.New(b, c.Spi, c.IRQ)
	c.I2C = i2c.New(c.IRQ)
	c.Wifi = wifi.New(c.IRQ)

	c.bindIRQ(b)
	c.bindTimers(b)
	c.bindDisplay(b)
	c.bindSpi(b)
	c.bindDma(b)
	c.bindI2C(b)
	c.bindWifi(b)

	return c
}

// timerTickCycles is the base clock every prescaled timer tick advances by;
// the timer's own shift (1..8) prescales further on top of this (spec §4.5).
const timerTickCycles = 1

// Reset restores every component to its post-boot state and schedules the
// first display frame and timer tick events. The scheduler rearms its own
// overflow rebase task on New/Reset (hardware/scheduler).
func (c *Core) Reset() {
	c.Bus.Reset()
	c.CPU.Reset()
	c.Scheduler.Reset()
	c.IRQ.Reset()
	c.Timers.Reset()
	c.Display.Reset()
	c.Spi.Reset()
	c.Dma.Reset()
	c.I2C.Reset()
	c.Wifi.Reset()
	atomic.StoreUint64(&c.counters.arm9Cycles, 0)
	atomic.StoreUint64(&c.counters.globalCycles, 0)

	c.scheduleFrame()
	c.scheduleTimerTick()
}

func (c *Core) scheduleFrame() {
	c.Scheduler.Schedule(func() {
		c.Display.RenderFrame()
		c.scheduleFrame()
	}, frameEventCycles)
}

func (c *Core) scheduleTimerTick() {
	c.Scheduler.Schedule(func() {
		c.Timers.Tick()
		c.scheduleTimerTick()
	}, timerTickCycles)
}

// Start runs the emulation thread until Stop is called (spec §5).
func (c *Core) Start() {
	c.running.Store(true)
	go c.runLoop()
}

// Stop requests the emulation thread to exit at its next loop check.
func (c *Core) Stop() {
	c.running.Store(false)
}

// runLoop is the straight CPU-plus-scheduler loop: advance arm9Cycles by
// runOpcode's returned cost until the scheduler's next event fires, then
// run every event due at the current cycle (spec §4.4, §5).
func (c *Core) runLoop() {
	for c.running.Load() {
		cost := c.CPU.RunOpcode()
		atomic.AddUint64(&c.counters.arm9Cycles, uint64(cost))
		c.Scheduler.Advance(uint64(cost))
	}
}
