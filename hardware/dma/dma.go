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

// Package dma implements the SPI DMA channel and the three general DMA
// channels (spec §4.8). Transfers complete instantaneously from the
// caller's point of view: Writeany register that enables a channel runs
// the whole transfer inline before returning.
package dma

// Bus is the memory surface DMA moves bytes across.
type Bus interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, v uint8)
}

// SpiPort is the narrow slice of hardware/spi.Spi the SPI DMA channel
// drives directly (bypassing the normal register wire protocol, matching
// the original's dedicated DMA-to-SPI-FIFO path).
type SpiPort interface {
	ReadData() uint32
	WriteData(mask, value uint32)
}

// IRQRequester raises DMA completion lines.
type IRQRequester interface {
	RequestIRQ(line int)
}

const (
	lineSpiDMA  int = 8
	lineGeneral2 int = 12
	lineGeneral0 int = 13 // channels 0,1 use 13+i
)

// Dma owns the SPI DMA channel and the three general channels.
type Dma struct {
	bus Bus
	spi SpiPort
	irq IRQRequester

	spiDMA    spiChannel
	general   [3]generalChannel
}

type spiChannel struct {
	control uint32
	count   uint32
	addr    uint32
}

type generalChannel struct {
	control   uint32
	count     uint32
	src       uint32
	dst       uint32
	srcStride uint32
	dstStride uint32
	chunkSize uint32
	fillByte  uint8
}

// New creates a Dma bound to bus (general channels + SPI DMA's RAM side),
// spi (SPI DMA's device side), and irq.
func New(bus Bus, spi SpiPort, irq IRQRequester) *Dma {
	return &Dma{bus: bus, spi: spi, irq: irq}
}

// Reset clears all four channels.
func (d *Dma) Reset() {
	d.spiDMA = spiChannel{}
	for i := range d.general {
		d.general[i] = generalChannel{}
	}
}

// SPI DMA channel registers.
func (d *Dma) SetSpiAddress(v uint32) { d.spiDMA.addr = v }
func (d *Dma) SetSpiCount(v uint32)   { d.spiDMA.count = v }

// EnableSpi runs the SPI DMA transfer: count+1 bytes, direction selected
// by control bit 0 (spec §4.8).
func (d *Dma) EnableSpi(control uint32) {
	d.spiDMA.control = control
	toSPI := control&0x1 != 0
	n := d.spiDMA.count + 1
	addr := d.spiDMA.addr
	for i := uint32(0); i < n; i++ {
		if toSPI {
			d.spi.WriteData(0xFF, uint32(d.bus.Read8(addr)))
		} else {
			d.bus.Write8(addr, uint8(d.spi.ReadData()))
		}
		addr++
	}
	d.spiDMA.addr = addr
	d.spiDMA.count = 0
	d.irq.RequestIRQ(lineSpiDMA)
}

// General channel registers (i in 0..2).
func (d *Dma) SetSrc(i int, v uint32)       { d.general[i].src = v }
func (d *Dma) SetDst(i int, v uint32)       { d.general[i].dst = v }
func (d *Dma) SetCount(i int, v uint32)     { d.general[i].count = v }
func (d *Dma) SetSrcStride(i int, v uint32) { d.general[i].srcStride = v }
func (d *Dma) SetDstStride(i int, v uint32) { d.general[i].dstStride = v }
func (d *Dma) SetChunkSize(i int, v uint32) { d.general[i].chunkSize = v }
func (d *Dma) SetFillByte(i int, v uint8)   { d.general[i].fillByte = v }

func (d *Dma) Count(i int) uint32 { return d.general[i].count }
func (d *Dma) Src(i int) uint32   { return d.general[i].src }
func (d *Dma) Dst(i int) uint32   { return d.general[i].dst }

// Enable runs a general channel's transfer: count+1 bytes from src to dst
// (or a simpleFill byte if control bit 10 is set), adding srcStride/
// dstStride to src/dst after every chunkSize bytes and resetting the
// within-chunk position (spec §4.8).
func (d *Dma) Enable(i int, control uint32) {
	ch := &d.general[i]
	ch.control = control
	fill := control&0x400 != 0

	n := ch.count + 1
	src, dst := ch.src, ch.dst
	chunkPos := uint32(0)

	for written := uint32(0); written < n; written++ {
		var value uint8
		if fill {
			value = ch.fillByte
		} else {
			value = d.bus.Read8(src)
			src++
		}
		d.bus.Write8(dst, value)
		dst++
		chunkPos++

		if ch.chunkSize != 0 && chunkPos == ch.chunkSize {
			src += ch.srcStride
			dst += ch.dstStride
			chunkPos = 0
		}
	}

	ch.src, ch.dst = src, dst
	ch.count = 0

	// Raise IRQ line 12 (channel 2) or 13+i (channels 0,1), per spec §4.8.
	if i == 2 {
		d.irq.RequestIRQ(lineGeneral2)
	} else {
		d.irq.RequestIRQ(lineGeneral0 + i)
	}
}
