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

// Package spi implements the SPI wire protocol shared by the FLASH and UIC
// chip selects (spec §4.7). Internally each device (flashDevice, uicDevice)
// is addressed one register at a time through the shared control/data/
// readCount state machine; Spi.Conn exposes that same state machine as a
// periph.io/x/conn/v3 conn.Conn, so code written against the real host SPI
// driver interface can drive a transaction here too.
package spi

import (
	"github.com/Hydr8gon/GamePawd/internal/curated"
	"github.com/Hydr8gon/GamePawd/logger"
)

// Bus is the RAM surface the firmware boot-mapping copies into.
type Bus interface {
	WriteRAMByte(offset uint32, v uint8)
}

// IRQRequester raises the SPI transfer-complete line.
type IRQRequester interface {
	RequestIRQ(line int)
}

const lineSPI int = 6

// device is the internal shape every chip-select target implements: a
// command byte and an address start a transaction, then bytes flow through
// readByte/writeByte.
type device interface {
	reset()
	beginTransaction(command uint8, address uint32)
	readByte() uint8
	writeByte(b uint8)
}

// Spi owns the shared wire-protocol state machine (command/address
// accumulator, chip-select and direction control, byte counters) and
// dispatches to whichever device is currently selected.
type Spi struct {
	bus Bus
	irq IRQRequester

	control   uint32
	data      uint32
	readCount uint32

	writeCount uint32
	address    uint32
	command    uint8

	flash *flashDevice
	uic   *uicDevice

	keys uint16 // pressKey/releaseKey input bits (external interface, spec §6)
}

// New creates an Spi bound to bus (for boot-mapping RAM writes) and irq.
func New(bus Bus, irq IRQRequester) *Spi {
	s := &Spi{bus: bus, irq: irq}
	s.flash = newFlashDevice()
	s.uic = newUICDevice()
	return s
}

// Reset clears wire-protocol state and both devices.
func (s *Spi) Reset() {
	s.control, s.data, s.readCount = 0, 0, 0
	s.writeCount, s.address, s.command = 0, 0, 0
	s.flash.reset()
	s.uic.reset()
}

const (
	ctrlDirRead    = 0x002 // bit 1: 1 = read direction
	ctrlDeviceUIC  = 0x100 // bit 8: 1 = UIC selected, 0 = FLASH
	ctrlDeselect   = 0x200 // bit 9: chip deselect, resets writeCount
	ctrlIRQRead    = 0x040 // bit 6: read-interrupt enable
	ctrlIRQWrite   = 0x080 // bit 7: write-interrupt enable
)

// ReadControl returns the control register.
func (s *Spi) ReadControl() uint32 { return s.control }

// WriteControl applies a masked write to the control register (spec §4.2
// MMIO convention), resetting the write-byte counter on chip deselect.
func (s *Spi) WriteControl(mask, value uint32) {
	s.control = (s.control &^ mask) | (value & mask)
	if s.control&ctrlDeselect != 0 {
		s.writeCount = 0
	}
}

// ReadFifoStat reports up to 16 words in the read FIFO (stubbed as
// "nonempty iff bytes remain") and an always-empty write FIFO.
func (s *Spi) ReadFifoStat() uint32 {
	stat := uint32(0x10)
	if s.readCount > 0 {
		stat |= 0x100
	}
	return stat
}

// ReadReadCount / WriteReadCount access the programmed read-byte count.
func (s *Spi) ReadReadCount() uint32 { return s.readCount }
func (s *Spi) WriteReadCount(mask, value uint32) {
	s.readCount = (s.readCount &^ mask) | (value & mask)
}

func (s *Spi) selected() device {
	if s.control&ctrlDeviceUIC != 0 {
		return s.uic
	}
	return s.flash
}

// ReadData streams one byte from the currently selected device, if the
// direction is "read" and bytes remain.
func (s *Spi) ReadData() uint32 {
	if s.readCount == 0 || s.control&ctrlDirRead == 0 {
		return 0
	}
	s.readCount--
	b := s.selected().readByte()
	if s.control&ctrlIRQRead != 0 {
		s.irq.RequestIRQ(lineSPI)
	}
	return uint32(b)
}

// WriteData feeds one byte of the wire protocol: the first byte of a
// transaction is the command (resetting the address accumulator), the
// next four bytes shift into address big-endian, and every byte after
// that (as well as the command/address bytes themselves) is also handed
// to the device so it can react to command bytes as they stream in (spec
// §4.7).
func (s *Spi) WriteData(mask, value uint32) {
	if s.control&ctrlDirRead != 0 {
		return
	}
	b := uint8(value & mask)

	s.writeCount++
	switch {
	case s.writeCount == 1:
		s.command = b
		s.address = 0
		s.selected().beginTransaction(s.command, s.address)
	case s.writeCount < 6:
		shift := (5 - s.writeCount) * 8
		s.address |= uint32(b) << shift
		s.selected().beginTransaction(s.command, s.address)
	default:
		s.selected().writeByte(b)
	}

	if s.control&ctrlIRQWrite != 0 {
		s.irq.RequestIRQ(lineSPI)
	}
}

// PressKey / ReleaseKey mark one of the 16 UIC input-scan bits (spec §6
// "Input contract").
func (s *Spi) PressKey(i int)   { s.uic.setKey(i, true) }
func (s *Spi) ReleaseKey(i int) { s.uic.setKey(i, false) }

// LoadFlashImage maps a raw FLASH image at boot: the first 64 bytes
// become RAM bytes 0..63 and the declared-length bootloader is copied to
// RAM 0x3F0000 (spec §4.7 "Boot mapping").
func (s *Spi) LoadFlashImage(image []byte) error {
	if len(image) < 68 {
		return curated.Errorf("flash image too small: %d bytes", len(image))
	}
	bootLen := uint32(image[0]) | uint32(image[1])<<8 | uint32(image[2])<<16 | uint32(image[3])<<24
	s.flash.loadRaw(image)
	for i := 0; i < 64; i++ {
		s.bus.WriteRAMByte(uint32(i), image[4+i])
	}
	end := 68 + bootLen
	if end > uint32(len(image)) {
		end = uint32(len(image))
	}
	for i := uint32(68); i < end; i++ {
		s.bus.WriteRAMByte(0x3F0000+(i-68), image[i])
	}
	return nil
}

// LoadContainer scans a packaged firmware container's partition table for
// the INDX (table origin) and LVC_ (ARM9 partition, offset+length encoded
// in the preceding 8 bytes) tags, copies the partition into RAM from 0,
// remaps the virtual FLASH address to 0x100000, and writes the
// boot-completion byte (spec §4.7 "Boot mapping").
func (s *Spi) LoadContainer(container []byte) error {
	const (
		tagINDX = "INDX"
		tagLVC  = "LVC_"
	)
	var found bool
	for i := 0; i+12 <= len(container); i++ {
		tag := string(container[i+8 : i+12])
		if tag != tagLVC {
			continue
		}
		offset := le32(container, i)
		length := le32(container, i+4)
		if offset+length > uint32(len(container)) {
			continue
		}
		for j := uint32(0); j < length; j++ {
			s.bus.WriteRAMByte(j, container[offset+j])
		}
		s.flash.loadContainer(container, 0x100000)
		s.bus.WriteRAMByte(0x3FFFFC, 0x3F)
		found = true
		break
	}
	if !found {
		return curated.Errorf("firmware container missing LVC_ partition entry")
	}
	return nil
}

func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// crc16 computes the 16-bit CRC required for UIC EEPROM records: poly
// 0x8408, init 0xFFFF, LSB-first shift (spec §4.7).
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0x8408
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

func logUnknownCommand(tag string, command uint8) {
	logger.Logf(logger.Allow, tag, "unknown command 0x%02X", command)
}
