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

// Package display implements the 854x480 ABGR framebuffer producer (spec
// §4.6). It owns the one piece of state shared across the emulation/host
// thread boundary: a bounded queue of completed frames (spec §5).
package display

import (
	"image"
	"runtime"
	"sync"

	"github.com/Hydr8gon/GamePawd/logger"
)

const (
	// Width and Height are the fixed output frame dimensions.
	Width  = 854
	Height = 480

	queueCapacity = 3
)

// Bus is the memory interface the display reads pixel data from.
type Bus interface {
	Read8(addr uint32) uint8
}

// IRQRequester raises the V-blank line.
type IRQRequester interface {
	RequestIRQ(line int)
}

const lineVBlank int = 22

// Display owns the palette, register state, and the outgoing frame queue.
// Frames are exposed as *image.NRGBA (a draw.Image) rather than a bare
// []uint32, so a host consumer can feed a popped frame directly into any
// image/draw pipeline, including Scale below.
type Display struct {
	bus Bus
	irq IRQRequester

	fbAddress  uint32
	fbWidth    uint32
	fbHeight   uint32
	fbStride   uint32
	fbXOffset  uint32
	fbYOffset  uint32
	pixelFmt   uint32

	palette  [256]uint32 // 0xFF|B|G|R per spec's ABGR packing
	palAddr  uint32

	mu    sync.Mutex
	queue []*image.NRGBA
}

// New creates a Display reading pixel data through bus and raising the
// V-blank line through irq.
func New(bus Bus, irq IRQRequester) *Display {
	return &Display{bus: bus, irq: irq}
}

// Reset clears registers and the frame queue.
func (d *Display) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fbAddress, d.fbWidth, d.fbHeight, d.fbStride = 0, 0, 0, 0
	d.fbXOffset, d.fbYOffset, d.pixelFmt = 0, 0, 0
	d.palAddr = 0
	for i := range d.palette {
		d.palette[i] = 0
	}
	d.queue = d.queue[:0]
}

func (d *Display) SetFramebufferAddress(v uint32) { d.fbAddress = v }
func (d *Display) SetFramebufferWidth(v uint32)   { d.fbWidth = v }
func (d *Display) SetFramebufferHeight(v uint32)  { d.fbHeight = v }
func (d *Display) SetFramebufferStride(v uint32)  { d.fbStride = v }
func (d *Display) SetXOffset(v uint32)            { d.fbXOffset = v }
func (d *Display) SetYOffset(v uint32)            { d.fbYOffset = v }
func (d *Display) SetPixelFormat(v uint32)        { d.pixelFmt = v }

// SetPaletteAddress writes palAddr (auto-increment on each SetPaletteData).
func (d *Display) SetPaletteAddress(v uint32) { d.palAddr = v & 0xFF }

// SetPaletteData converts a 24-bit RGB word to 0xFF|B|G|R and stores it at
// the current palette address, then auto-increments (spec §4.6).
func (d *Display) SetPaletteData(rgb24 uint32) {
	r := rgb24 & 0xFF
	g := (rgb24 >> 8) & 0xFF
	b := (rgb24 >> 16) & 0xFF
	d.palette[d.palAddr] = 0xFF000000 | b<<16 | g<<8 | r
	d.palAddr = (d.palAddr + 1) & 0xFF
}

// RenderFrame reads one frame per the current registers, decodes it
// according to pixelFmt, and pushes it onto the queue — yielding the
// caller (a busy-loop, since the emulation thread has no scheduler
// primitive to block on) while the queue is full. Raises V-blank (spec
// §4.6).
func (d *Display) RenderFrame() {
	frame := image.NewNRGBA(image.Rect(0, 0, Width, Height))

	switch d.pixelFmt {
	case 0:
		d.renderIndexed(frame)
	case 2:
		d.render1555(frame)
	default:
		logger.Logf(logger.Allow, "display", "unsupported pixel format %d", d.pixelFmt)
		// frame is already zeroed (black) by image.NewNRGBA.
	}

	d.push(frame)
	d.irq.RequestIRQ(lineVBlank)
}

func (d *Display) renderIndexed(frame *image.NRGBA) {
	for y := uint32(0); y < d.fbHeight; y++ {
		for x := uint32(0); x < d.fbWidth; x++ {
			idx := d.bus.Read8(d.fbAddress + y*d.fbStride + x)
			d.plot(frame, x, y, d.palette[idx])
		}
	}
}

func (d *Display) render1555(frame *image.NRGBA) {
	for y := uint32(0); y < d.fbHeight; y++ {
		for x := uint32(0); x < d.fbWidth; x++ {
			addr := d.fbAddress + y*d.fbStride + x*2
			lo := uint32(d.bus.Read8(addr))
			hi := uint32(d.bus.Read8(addr + 1))
			px := lo | hi<<8
			r5 := (px >> 10) & 0x1F
			g5 := (px >> 5) & 0x1F
			b5 := px & 0x1F
			r8 := (r5 << 3) | (r5 >> 2)
			g8 := (g5 << 3) | (g5 >> 2)
			b8 := (b5 << 3) | (b5 >> 2)
			d.plot(frame, x, y, 0xFF000000|b8<<16|g8<<8|r8)
		}
	}
}

// plot lands one decoded pixel at (y + fbYOffset - 8, x + fbXOffset - 96),
// dropping out-of-range rows/columns (spec §4.6).
func (d *Display) plot(frame *image.NRGBA, x, y uint32, abgr uint32) {
	outY := int64(y) + int64(d.fbYOffset) - 8
	outX := int64(x) + int64(d.fbXOffset) - 96
	if outY < 0 || outY >= Height || outX < 0 || outX >= Width {
		return
	}
	off := frame.PixOffset(int(outX), int(outY))
	frame.Pix[off+0] = uint8(abgr)          // R
	frame.Pix[off+1] = uint8(abgr >> 8)     // G
	frame.Pix[off+2] = uint8(abgr >> 16)    // B
	frame.Pix[off+3] = uint8(abgr >> 24)    // A
}

func (d *Display) push(frame *image.NRGBA) {
	d.mu.Lock()
	for len(d.queue) >= queueCapacity {
		d.mu.Unlock()
		// Producer yields rather than dropping a frame (spec §7 item 6).
		runtime.Gosched()
		d.mu.Lock()
	}
	d.queue = append(d.queue, frame)
	d.mu.Unlock()
}

// GetBuffer pops the next completed frame, or nil if none is ready. Called
// from the host thread (spec §5).
func (d *Display) GetBuffer() *image.NRGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil
	}
	frame := d.queue[0]
	d.queue = d.queue[1:]
	return frame
}

// QueueLen reports the current queue depth, for the §8 invariant test
// ("the size of the framebuffer queue never exceeds 3").
func (d *Display) QueueLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}
