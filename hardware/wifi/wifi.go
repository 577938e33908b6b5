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

// Package wifi implements just enough SDIO host-controller and BCM-43xx
// function-1 behavior for the firmware's hardware probe (spec §4.10).
package wifi

import "github.com/Hydr8gon/GamePawd/logger"

// IRQRequester raises SDIO completion lines.
type IRQRequester interface {
	RequestIRQ(line int)
}

const (
	lineCmdComplete   int = 0
	lineXferComplete  int = 1
	lineReadReady     int = 5
	lineWriteReady    int = 6
)

// the 256-byte function-1 EROM literal the firmware scans (spec §4.10);
// reproduced verbatim as the address range [eromBase, eromBase+256).
const eromBase = 0x18109000

var eromLiteral = buildEromLiteral()

func buildEromLiteral() [256]byte {
	var erom [256]byte
	// A plausible minimal core-enumeration terminator: a chip id descriptor
	// header word (low) followed by the end-of-table marker (0xF).
	erom[0] = 0x01
	erom[252], erom[253], erom[254], erom[255] = 0x0F, 0x00, 0x00, 0x00
	return erom
}

type transfer struct {
	active    bool
	function  int
	address   uint32
	size      uint32
	remaining uint32
	write     bool
}

// Wifi owns the SDIO command/response state and the function-1 32-bit
// address window.
type Wifi struct {
	irq IRQRequester

	windowLow  uint32 // bits 15:0 of the window address
	windowHigh uint32 // bits 31:16 of the window address
	clockCSR   uint32

	xfer transfer
}

// New creates a Wifi bound to irq.
func New(irq IRQRequester) *Wifi {
	return &Wifi{irq: irq}
}

// Reset clears SDIO state.
func (w *Wifi) Reset() {
	w.windowLow, w.windowHigh, w.clockCSR = 0, 0, 0
	w.xfer = transfer{}
}

// windowAddress assembles the 32-bit function-1 window address from the
// three programmed bytes (spec §4.10). The backplane base (bits 31:24) is
// fixed at 0x18 the way the real BCM43xx core enumeration table is mapped;
// windowHigh/windowLow supply the remaining 24 bits.
func (w *Wifi) windowAddress() uint32 {
	return 0x18000000 | w.windowLow | w.windowHigh<<16
}

// Cmd5 implements CMD5 (op-cond): two functions, ready.
func (w *Wifi) Cmd5() uint32 {
	w.irq.RequestIRQ(lineCmdComplete)
	return 0xA0FE0000
}

// Cmd7 implements CMD7 (select).
func (w *Wifi) Cmd7() uint32 {
	w.irq.RequestIRQ(lineCmdComplete)
	return 0x1E00
}

// Cmd52Write implements a single-byte write at (function, address),
// handling the function-1 window-address bytes and clock-CSR register
// specially (spec §4.10).
func (w *Wifi) Cmd52Write(function int, address uint32, value uint8) {
	if function == 1 {
		switch address {
		case 0x1000A:
			w.windowLow = (w.windowLow &^ 0xFF) | uint32(value)
			w.irq.RequestIRQ(lineCmdComplete)
			return
		case 0x1000B:
			w.windowLow = (w.windowLow &^ 0xFF00) | uint32(value)<<8
			w.irq.RequestIRQ(lineCmdComplete)
			return
		case 0x1000C:
			w.windowHigh = (w.windowHigh &^ 0xFF) | uint32(value)
			w.irq.RequestIRQ(lineCmdComplete)
			return
		case 0x1000E:
			// clock-CSR: after a write, the "ready" bits mirror the low bits
			// instantly.
			w.clockCSR = uint32(value) | (uint32(value) << 1)
			w.irq.RequestIRQ(lineCmdComplete)
			return
		}
	}
	logger.Logf(logger.Allow, "wifi", "unhandled CMD52 write func=%d addr=0x%X", function, address)
	w.irq.RequestIRQ(lineCmdComplete)
}

// Cmd52Read implements a single-byte read at (function, address): reads
// through the function-1 window into the fixed register/EROM set, or the
// clock-CSR register (spec §4.10).
func (w *Wifi) Cmd52Read(function int, address uint32) uint8 {
	defer w.irq.RequestIRQ(lineCmdComplete)
	if function == 1 && address == 0x1000E {
		return uint8(w.clockCSR)
	}
	if function != 1 {
		logger.Logf(logger.Allow, "wifi", "unhandled CMD52 read func=%d addr=0x%X", function, address)
		return 0
	}
	return w.readWindowByte(w.windowAddress())
}

func (w *Wifi) readWindowByte(addr uint32) uint8 {
	switch {
	case addr == 0x18000000, addr == 0x18000001, addr == 0x18000002, addr == 0x18000003:
		return byteOf(0x16914319, addr-0x18000000)
	case addr >= 0x18000004 && addr < 0x18000008:
		return byteOf(0x10480009, addr-0x18000004)
	case addr >= 0x180000FC && addr < 0x18000100:
		return byteOf(0x18109000, addr-0x180000FC)
	case addr >= 0x18000604 && addr < 0x18000608:
		return byteOf(0x19CC3607, addr-0x18000604)
	case addr >= 0x18004000 && addr < 0x18004004:
		return byteOf(0x00258033, addr-0x18004000)
	case addr >= eromBase && addr < eromBase+256:
		return eromLiteral[addr-eromBase]
	}
	return 0
}

func byteOf(word uint32, shift uint32) uint8 {
	return uint8(word >> (shift * 8))
}

// Cmd53Begin sets up an in-flight transfer descriptor and immediately
// raises the read-ready or write-ready line (spec §4.10).
func (w *Wifi) Cmd53Begin(function int, address, size uint32, write bool) {
	w.xfer = transfer{active: true, function: function, address: address, size: size, remaining: size, write: write}
	if write {
		w.irq.RequestIRQ(lineWriteReady)
	} else {
		w.irq.RequestIRQ(lineReadReady)
	}
}

// DataRead streams the next byte of an in-flight CMD53 read, raising
// transfer-complete on zero-remaining.
func (w *Wifi) DataRead() uint8 {
	if !w.xfer.active || w.xfer.remaining == 0 {
		return 0
	}
	b := w.readWindowByte(w.xfer.address)
	w.xfer.address++
	w.xfer.remaining--
	if w.xfer.remaining == 0 {
		w.xfer.active = false
		w.irq.RequestIRQ(lineXferComplete)
	}
	return b
}

// DataWrite consumes the next byte of an in-flight CMD53 write (the
// function-1 window has no backing store to mutate for these probe
// registers, so the byte is simply accounted for), raising
// transfer-complete on zero-remaining.
func (w *Wifi) DataWrite(b uint8) {
	if !w.xfer.active || w.xfer.remaining == 0 {
		return
	}
	w.xfer.address++
	w.xfer.remaining--
	if w.xfer.remaining == 0 {
		w.xfer.active = false
		w.irq.RequestIRQ(lineXferComplete)
	}
}
