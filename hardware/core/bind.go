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

package core

import "github.com/Hydr8gon/GamePawd/hardware/bus"

// Register addresses marked "confirmed" are taken directly from the
// original memory map (Spi::readControl/writeControl at 0xF0004404,
// Spi::readFifoStat at 0xF000440C, Spi::readData/writeData at 0xF0004410,
// Spi::writeReadCount at 0xF0004420, Display::writeFbAddr at 0xF0009474,
// Display::writePalAddr at 0xF0009500, Display::writePalData at 0xF0009504).
// Every other address below is this module's own invention, chosen to keep
// each peripheral's registers in one contiguous, word-aligned block; see
// DESIGN.md for the full layout rationale.

func (c *Core) bindIRQ(b *bus.Bus) {
	const lineBase = 0xF0001000 // 32 lines, 4 bytes apart: 0xF0001000..0xF000107C
	for n := 0; n < 32; n++ {
		n := n
		b.Bind(lineBase+uint32(n)*4,
			func() uint32 { return c.IRQ.ReadEnable(n) },
			func(mask, value uint32) { c.IRQ.WriteEnable(n, mask, value) })
	}
	b.Bind(0xF0001080,
		func() uint32 { return c.IRQ.ReadIndex() },
		func(mask, value uint32) {})
	b.Bind(0xF0001084,
		func() uint32 { return c.IRQ.ReadPriorityMask() },
		func(mask, value uint32) { c.IRQ.WritePriorityMask(mask, value) })
	b.Bind(0xF0001088,
		func() uint32 { return c.IRQ.ReadAndClearPriorityMask() },
		func(mask, value uint32) { c.IRQ.WritePriorityMaskShadow(mask, value) })
}

func (c *Core) bindTimers(b *bus.Bus) {
	// Two timers, 0x10 apart: control (bit0 enable, bits3:1 shift-1), value
	// (read-only), target.
	for i := 0; i < 2; i++ {
		i := i
		base := uint32(0xF0002000 + i*0x10)
		b.Bind(base,
			func() uint32 { return 0 },
			func(mask, value uint32) {
				if mask&0x1 != 0 {
					c.Timers.SetEnable(i, value&0x1 != 0)
				}
				if mask&0xE != 0 {
					c.Timers.SetShift(i, uint8(((value&0xE)>>1)+1))
				}
			})
		b.Bind(base+0x4,
			func() uint32 { return c.Timers.Value(i) },
			func(mask, value uint32) {})
		b.Bind(base+0x8,
			func() uint32 { return 0 },
			func(mask, value uint32) { c.Timers.SetTarget(i, value) })
	}
	b.Bind(0xF0002020,
		func() uint32 { return c.Timers.FreeRunning() },
		func(mask, value uint32) {})
}

func (c *Core) bindDisplay(b *bus.Bus) {
	b.Bind(0xF0009470,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetPixelFormat(value) })
	b.Bind(0xF0009474, // confirmed: Display::writeFbAddr
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetFramebufferAddress(value) })
	b.Bind(0xF0009478,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetFramebufferWidth(value) })
	b.Bind(0xF000947C,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetFramebufferHeight(value) })
	b.Bind(0xF0009480,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetFramebufferStride(value) })
	b.Bind(0xF0009484,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetXOffset(value) })
	b.Bind(0xF0009488,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetYOffset(value) })
	b.Bind(0xF0009500, // confirmed: Display::writePalAddr
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetPaletteAddress(value) })
	b.Bind(0xF0009504, // confirmed: Display::writePalData
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Display.SetPaletteData(value) })
}

func (c *Core) bindSpi(b *bus.Bus) {
	b.Bind(0xF0004404, // confirmed: Spi::readControl/writeControl
		func() uint32 { return c.Spi.ReadControl() },
		func(mask, value uint32) { c.Spi.WriteControl(mask, value) })
	b.Bind(0xF000440C, // confirmed: Spi::readFifoStat
		func() uint32 { return c.Spi.ReadFifoStat() },
		func(mask, value uint32) {})
	b.Bind(0xF0004410, // confirmed: Spi::readData/writeData
		func() uint32 { return c.Spi.ReadData() },
		func(mask, value uint32) { c.Spi.WriteData(mask, value) })
	b.Bind(0xF0004420, // confirmed: Spi::writeReadCount
		func() uint32 { return c.Spi.ReadReadCount() },
		func(mask, value uint32) { c.Spi.WriteReadCount(mask, value) })
}

func (c *Core) bindDma(b *bus.Bus) {
	b.Bind(0xF000A000,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Dma.SetSpiAddress(value) })
	b.Bind(0xF000A004,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Dma.SetSpiCount(value) })
	b.Bind(0xF000A008,
		func() uint32 { return 0 },
		func(mask, value uint32) { c.Dma.EnableSpi(value) })

	for i := 0; i < 3; i++ {
		i := i
		base := uint32(0xF000A020 + i*0x20)
		b.Bind(base,
			func() uint32 { return c.Dma.Src(i) },
			func(mask, value uint32) { c.Dma.SetSrc(i, value) })
		b.Bind(base+0x04,
			func() uint32 { return c.Dma.Dst(i) },
			func(mask, value uint32) { c.Dma.SetDst(i, value) })
		b.Bind(base+0x08,
			func() uint32 { return c.Dma.Count(i) },
			func(mask, value uint32) { c.Dma.SetCount(i, value) })
		b.Bind(base+0x0C,
			func() uint32 { return 0 },
			func(mask, value uint32) { c.Dma.SetSrcStride(i, value) })
		b.Bind(base+0x10,
			func() uint32 { return 0 },
			func(mask, value uint32) { c.Dma.SetDstStride(i, value) })
		b.Bind(base+0x14,
			func() uint32 { return 0 },
			func(mask, value uint32) { c.Dma.SetChunkSize(i, value) })
		b.Bind(base+0x18,
			func() uint32 { return 0 },
			func(mask, value uint32) { c.Dma.SetFillByte(i, uint8(value)) })
		b.Bind(base+0x1C,
			func() uint32 { return 0 },
			func(mask, value uint32) { c.Dma.Enable(i, value) })
	}
}

func (c *Core) bindI2C(b *bus.Bus) {
	for n := 0; n < 4; n++ {
		n := n
		base := uint32(0xF000B000 + n*0x10)
		b.Bind(base,
			func() uint32 { return c.I2C.ReadControl(n) },
			func(mask, value uint32) { c.I2C.WriteControl(n, mask, value) })
		b.Bind(base+0x4,
			func() uint32 { return c.I2C.ReadStatus(n) },
			func(mask, value uint32) {})
		b.Bind(base+0x8,
			func() uint32 { return c.I2C.ReadData(n) },
			func(mask, value uint32) { c.I2C.WriteData(n, uint8(value)) })
	}
	b.Bind(0xF000B100,
		func() uint32 { return c.I2C.ReadIRQFlags() },
		func(mask, value uint32) { c.I2C.ClearIRQFlags(value & mask) })
}

// bindWifi wires a small command/argument/response/data register set to the
// SDIO command surface hardware/wifi exposes. The firmware issues CMD5,
// CMD7, CMD52, and CMD53 by first writing the argument (and, for CMD53, the
// transfer size), then the command register; cmdIndex packs which command
// and, for CMD52/53, the function number, direction, and (for CMD52 writes)
// the data byte.
func (c *Core) bindWifi(b *bus.Bus) {
	var argument, size uint32

	b.Bind(0xF000C000,
		func() uint32 { return argument },
		func(mask, value uint32) { argument = (argument &^ mask) | (value & mask) })
	b.Bind(0xF000C004,
		func() uint32 { return size },
		func(mask, value uint32) { size = (size &^ mask) | (value & mask) })

	var response uint32
	b.Bind(0xF000C008,
		func() uint32 { return response },
		func(mask, value uint32) {
			cmd := (value & mask) & 0xF
			write := (value&mask)&0x10 != 0
			function := int((value & mask) >> 8 & 0x7)
			dataByte := uint8((value & mask) >> 16)
			address := argument & 0x1FFFF

			switch cmd {
			case 5:
				response = c.Wifi.Cmd5()
			case 7:
				response = c.Wifi.Cmd7()
			case 52:
				if write {
					c.Wifi.Cmd52Write(function, address, dataByte)
				} else {
					response = uint32(c.Wifi.Cmd52Read(function, address))
				}
			case 53:
				c.Wifi.Cmd53Begin(function, address, size, write)
			}
		})
	b.Bind(0xF000C00C,
		func() uint32 { return uint32(c.Wifi.DataRead()) },
		func(mask, value uint32) { c.Wifi.DataWrite(uint8(value & mask)) })
}
