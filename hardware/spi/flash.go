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

package spi

// flashDevice models the FLASH chip: 0x03 Read, 0x05 Read Status, 0x06
// Write-Enable, 0x04 Write-Disable, 0x9F JEDEC ID (spec §4.7).
type flashDevice struct {
	image      []byte
	virtOffset uint32 // virtual-to-physical offset for command 0x03
	status     uint8
	command    uint8
	address    uint32
	idIndex    int
}

func newFlashDevice() *flashDevice { return &flashDevice{} }

func (f *flashDevice) reset() {
	f.status = 0
	f.command = 0
	f.address = 0
	f.idIndex = 0
}

// loadRaw maps image at virtual address 0 (the "bare FLASH image" boot
// path).
func (f *flashDevice) loadRaw(image []byte) {
	f.image = image
	f.virtOffset = 0
}

// loadContainer maps a firmware container at virtAddr (spec §4.7: the
// partition's virtual FLASH address is set to 0x100000).
func (f *flashDevice) loadContainer(container []byte, virtAddr uint32) {
	f.image = container
	f.virtOffset = virtAddr
}

func (f *flashDevice) beginTransaction(command uint8, address uint32) {
	f.command = command
	f.address = address
	if command == 0x9F {
		f.idIndex = 0
	}
}

func (f *flashDevice) readByte() uint8 {
	switch f.command {
	case 0x05: // Read Status
		return f.status
	case 0x9F: // JEDEC ID
		id := [...]uint8{0x20, 0xBA, 0x19, 0x00}
		if f.idIndex < len(id) {
			b := id[f.idIndex]
			f.idIndex++
			return b
		}
		return 0x00
	case 0x03: // Read
		phys := f.address - f.virtOffset
		if f.image == nil || phys >= uint32(len(f.image)) {
			f.address++
			return 0
		}
		b := f.image[phys]
		f.address++
		return b
	default:
		logUnknownCommand("flash", f.command)
		return 0
	}
}

func (f *flashDevice) writeByte(b uint8) {
	switch f.command {
	case 0x06: // Write-Enable
		f.status |= 0x2
	case 0x04: // Write-Disable
		f.status &^= 0x2
	default:
		logUnknownCommand("flash", f.command)
	}
}
