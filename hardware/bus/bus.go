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

// Package bus implements the uniform byte-addressable address space (spec
// C1): RAM below 0x40000000, MMIO at 0xF0000000-0xFFFFFFFF, unmapped
// elsewhere. Peripheral packages never import bus; instead the composition
// root (hardware/core) binds each peripheral's register read/write methods
// into the bus as plain closures, the way gopher2600's VCSMemory wires chip
// registers into its CPU-visible address map.
package bus

import (
	"github.com/Hydr8gon/GamePawd/logger"
)

const (
	ramSize   = 4 * 1024 * 1024
	ramLimit  = 0x40000000
	mmioBase  = 0xF0000000
	wordMask  = ^uint32(3)
)

// ReadFunc returns the current 32-bit value of a bound register.
type ReadFunc func() uint32

// WriteFunc applies value to the bits selected by mask of a bound register.
// Both mask and value are already shifted into the register's own bit
// position, mirroring the original firmware-facing calling convention.
type WriteFunc func(mask, value uint32)

type handler struct {
	read  ReadFunc
	write WriteFunc
}

// Bus is the CPU-visible address space.
type Bus struct {
	ram      [ramSize]byte
	handlers map[uint32]handler
}

// New creates an empty Bus. Call Bind for every MMIO register before use.
func New() *Bus {
	return &Bus{handlers: make(map[uint32]handler)}
}

// Reset zeroes RAM. MMIO handlers are owned by the peripherals themselves
// and are reset independently by Core.Reset.
func (b *Bus) Reset() {
	for i := range b.ram {
		b.ram[i] = 0
	}
}

// RAM exposes the backing array directly, for firmware loading.
func (b *Bus) RAM() []byte {
	return b.ram[:]
}

// WriteRAMByte writes one byte directly into RAM, bypassing MMIO routing.
// Used by firmware boot-mapping, which always targets RAM (spec §4.7).
func (b *Bus) WriteRAMByte(offset uint32, v uint8) {
	b.ram[offset%ramSize] = v
}

// Bind registers a 4-byte-aligned MMIO register at addr. addr must be
// word-aligned and lie in [0xF0000000, 0x100000000).
func (b *Bus) Bind(addr uint32, read ReadFunc, write WriteFunc) {
	b.handlers[addr&wordMask] = handler{read: read, write: write}
}

// Read8 reads one byte.
func (b *Bus) Read8(addr uint32) uint8 { return uint8(b.read(addr, 1)) }

// Read16 reads a halfword, aligned down to 2 bytes.
func (b *Bus) Read16(addr uint32) uint16 { return uint16(b.read(addr&^1, 2)) }

// Read32 reads a word, aligned down to 4 bytes.
func (b *Bus) Read32(addr uint32) uint32 { return b.read(addr&^3, 4) }

// Write8 writes one byte.
func (b *Bus) Write8(addr uint32, v uint8) { b.write(addr, 1, uint32(v)) }

// Write16 writes a halfword, aligned down to 2 bytes.
func (b *Bus) Write16(addr uint32, v uint16) { b.write(addr&^1, 2, uint32(v)) }

// Write32 writes a word, aligned down to 4 bytes.
func (b *Bus) Write32(addr uint32, v uint32) { b.write(addr&^3, 4, v) }

func (b *Bus) read(addr uint32, width uint32) uint32 {
	if addr < ramLimit {
		return b.readRAM(addr, width)
	}
	if addr>>28 == 0xF {
		return b.readMMIO(addr, width)
	}
	logger.Logf(logger.Allow, "bus", "unmapped read at 0x%08X", addr)
	return 0
}

func (b *Bus) write(addr uint32, width uint32, value uint32) {
	if addr < ramLimit {
		b.writeRAM(addr, width, value)
		return
	}
	if addr>>28 == 0xF {
		b.writeMMIO(addr, width, value)
		return
	}
	logger.Logf(logger.Allow, "bus", "unmapped write at 0x%08X", addr)
}

func (b *Bus) readRAM(addr, width uint32) uint32 {
	var v uint32
	for i := uint32(0); i < width; i++ {
		v |= uint32(b.ram[(addr+i)%ramSize]) << (8 * i)
	}
	return v
}

func (b *Bus) writeRAM(addr, width, value uint32) {
	for i := uint32(0); i < width; i++ {
		b.ram[(addr+i)%ramSize] = byte(value >> (8 * i))
	}
}

// readMMIO resolves each byte of the access to the 4-byte-aligned register
// that contains it. Bytes whose register has no bound handler are
// zero-filled and logged once per access (spec §4.2/§7 item 3).
func (b *Bus) readMMIO(addr, width uint32) uint32 {
	var v uint32
	missed := false
	for i := uint32(0); i < width; i++ {
		byteAddr := addr + i
		word := byteAddr & wordMask
		h, ok := b.handlers[word]
		if !ok {
			missed = true
			continue
		}
		shift := (byteAddr & 3) * 8
		v |= ((h.read() >> shift) & 0xFF) << (8 * i)
	}
	if missed {
		logger.Logf(logger.Allow, "bus", "unknown MMIO register read at 0x%08X", addr)
	}
	return v
}

// writeMMIO is the write-side mirror of readMMIO. Every byte that does map
// to a bound register invokes that register's WriteFunc with a byte-wide
// mask at its correct bit position within the register.
func (b *Bus) writeMMIO(addr, width, value uint32) {
	missed := false
	for i := uint32(0); i < width; i++ {
		byteAddr := addr + i
		word := byteAddr & wordMask
		h, ok := b.handlers[word]
		if !ok {
			missed = true
			continue
		}
		shift := (byteAddr & 3) * 8
		mask := uint32(0xFF) << shift
		byteVal := (value >> (8 * i)) & 0xFF
		h.write(mask, byteVal<<shift)
	}
	if missed {
		logger.Logf(logger.Allow, "bus", "unknown MMIO register write at 0x%08X", addr)
	}
}
