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

package dma_test

import (
	"testing"

	"github.com/Hydr8gon/GamePawd/hardware/dma"
	"github.com/Hydr8gon/GamePawd/internal/runtest"
)

type fakeBus struct {
	mem map[uint32]uint8
}

func newFakeBus() *fakeBus { return &fakeBus{mem: make(map[uint32]uint8)} }

func (b *fakeBus) Read8(addr uint32) uint8     { return b.mem[addr] }
func (b *fakeBus) Write8(addr uint32, v uint8) { b.mem[addr] = v }

type fakeSpi struct {
	written []uint8
	reads   []uint32
	pos     int
}

func (s *fakeSpi) ReadData() uint32 {
	if s.pos >= len(s.reads) {
		return 0
	}
	v := s.reads[s.pos]
	s.pos++
	return v
}

func (s *fakeSpi) WriteData(mask, value uint32) { s.written = append(s.written, uint8(value&mask)) }

type fakeIRQ struct {
	requested []int
}

func (f *fakeIRQ) RequestIRQ(line int) { f.requested = append(f.requested, line) }

func TestGeneralChannelCopiesCountPlusOneBytes(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0], bus.mem[1], bus.mem[2] = 0x11, 0x22, 0x33
	irq := &fakeIRQ{}
	d := dma.New(bus, &fakeSpi{}, irq)
	d.Reset()

	d.SetSrc(0, 0)
	d.SetDst(0, 100)
	d.SetCount(0, 2) // count+1 = 3 bytes
	d.Enable(0, 0)

	runtest.ExpectEquality(t, bus.mem[100], uint8(0x11))
	runtest.ExpectEquality(t, bus.mem[101], uint8(0x22))
	runtest.ExpectEquality(t, bus.mem[102], uint8(0x33))
	runtest.ExpectEquality(t, irq.requested, []int{13})
}

func TestChannel2UsesLine12(t *testing.T) {
	bus := newFakeBus()
	irq := &fakeIRQ{}
	d := dma.New(bus, &fakeSpi{}, irq)
	d.Reset()

	d.SetCount(2, 0)
	d.Enable(2, 0)
	runtest.ExpectEquality(t, irq.requested, []int{12})
}

func TestChannel1UsesLine14(t *testing.T) {
	bus := newFakeBus()
	irq := &fakeIRQ{}
	d := dma.New(bus, &fakeSpi{}, irq)
	d.Reset()

	d.SetCount(1, 0)
	d.Enable(1, 0)
	runtest.ExpectEquality(t, irq.requested, []int{14})
}

func TestSimpleFillWritesFillByteRepeatedly(t *testing.T) {
	bus := newFakeBus()
	irq := &fakeIRQ{}
	d := dma.New(bus, &fakeSpi{}, irq)
	d.Reset()

	d.SetDst(0, 50)
	d.SetCount(0, 3) // 4 bytes
	d.SetFillByte(0, 0xAB)
	d.Enable(0, 0x400) // simpleFill bit

	for i := uint32(0); i < 4; i++ {
		runtest.ExpectEquality(t, bus.mem[50+i], uint8(0xAB))
	}
}

func TestChunkStrideAdvancesAfterChunkSize(t *testing.T) {
	bus := newFakeBus()
	for i := uint32(0); i < 8; i++ {
		bus.mem[i] = uint8(i)
	}
	irq := &fakeIRQ{}
	d := dma.New(bus, &fakeSpi{}, irq)
	d.Reset()

	d.SetSrc(0, 0)
	d.SetDst(0, 100)
	d.SetCount(0, 3) // 4 bytes, in chunks of 2
	d.SetChunkSize(0, 2)
	d.SetSrcStride(0, 2) // skip 2 bytes between chunks
	d.SetDstStride(0, 0)
	d.Enable(0, 0)

	// chunk 1: src[0],src[1] -> dst[100],dst[101]; stride skips src[2],src[3]
	// chunk 2: src[4],src[5] -> dst[102],dst[103]
	runtest.ExpectEquality(t, bus.mem[100], uint8(0))
	runtest.ExpectEquality(t, bus.mem[101], uint8(1))
	runtest.ExpectEquality(t, bus.mem[102], uint8(4))
	runtest.ExpectEquality(t, bus.mem[103], uint8(5))
}

func TestSpiDMAWriteDirectionReadsRAMIntoSPI(t *testing.T) {
	bus := newFakeBus()
	bus.mem[10], bus.mem[11] = 0x01, 0x02
	spiPort := &fakeSpi{}
	irq := &fakeIRQ{}
	d := dma.New(bus, spiPort, irq)
	d.Reset()

	d.SetSpiAddress(10)
	d.SetSpiCount(1) // count+1 = 2 bytes
	d.EnableSpi(0x1) // toSPI

	runtest.ExpectEquality(t, spiPort.written, []uint8{0x01, 0x02})
	runtest.ExpectEquality(t, irq.requested, []int{8})
}
