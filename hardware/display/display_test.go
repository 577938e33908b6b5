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

package display_test

import (
	"testing"
	"time"

	"github.com/Hydr8gon/GamePawd/hardware/display"
	"github.com/Hydr8gon/GamePawd/internal/runtest"
)

type fakeBus struct {
	mem [256]uint8
}

func (b *fakeBus) Read8(addr uint32) uint8 { return b.mem[addr%uint32(len(b.mem))] }

type fakeIRQ struct {
	requested []int
}

func (f *fakeIRQ) RequestIRQ(line int) { f.requested = append(f.requested, line) }

func TestRenderFrameRaisesVBlank(t *testing.T) {
	bus := &fakeBus{}
	irq := &fakeIRQ{}
	d := display.New(bus, irq)
	d.Reset()
	d.SetFramebufferWidth(4)
	d.SetFramebufferHeight(4)
	d.SetFramebufferStride(4)

	d.RenderFrame()
	runtest.ExpectEquality(t, irq.requested, []int{22})
	runtest.ExpectEquality(t, d.QueueLen(), 1)
}

func TestIndexedPaletteLookup(t *testing.T) {
	bus := &fakeBus{}
	bus.mem[0] = 1 // single indexed pixel at fbAddress 0
	irq := &fakeIRQ{}
	d := display.New(bus, irq)
	d.Reset()
	d.SetFramebufferWidth(1)
	d.SetFramebufferHeight(1)
	d.SetFramebufferStride(1)
	d.SetXOffset(96) // plot() subtracts 96/8, landing pixel at (0,0)
	d.SetYOffset(8)

	d.SetPaletteAddress(1)
	d.SetPaletteData(0x00FF00) // g=0xFF -> palette[1] = 0xFF00FF00

	d.RenderFrame()
	frame := d.GetBuffer()
	if frame == nil {
		t.Fatal("expected a frame")
	}
	off := frame.PixOffset(0, 0)
	runtest.ExpectEquality(t, frame.Pix[off+1], uint8(0xFF)) // green channel
}

func TestQueueNeverExceedsCapacity(t *testing.T) {
	bus := &fakeBus{}
	irq := &fakeIRQ{}
	d := display.New(bus, irq)
	d.Reset()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			d.RenderFrame()
		}
		close(done)
	}()

	drained := 0
	for drained < 5 {
		if d.QueueLen() > 3 {
			t.Fatalf("queue exceeded capacity: %d", d.QueueLen())
		}
		if frame := d.GetBuffer(); frame != nil {
			drained++
		}
		time.Sleep(time.Millisecond)
	}
	<-done
}

func TestScaleResizesFrame(t *testing.T) {
	bus := &fakeBus{}
	irq := &fakeIRQ{}
	d := display.New(bus, irq)
	d.Reset()
	d.SetFramebufferWidth(4)
	d.SetFramebufferHeight(4)
	d.SetFramebufferStride(4)

	d.RenderFrame()
	frame := d.GetBuffer()
	if frame == nil {
		t.Fatal("expected a frame")
	}

	scaled := display.Scale(frame, 427, 240)
	runtest.ExpectEquality(t, scaled.Bounds().Dx(), 427)
	runtest.ExpectEquality(t, scaled.Bounds().Dy(), 240)
}

func TestGetBufferOnEmptyQueueReturnsNil(t *testing.T) {
	bus := &fakeBus{}
	irq := &fakeIRQ{}
	d := display.New(bus, irq)
	d.Reset()
	if d.GetBuffer() != nil {
		t.Fatal("expected nil from an empty queue")
	}
}
