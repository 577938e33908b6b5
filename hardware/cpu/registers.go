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

package cpu

// Physical register storage layout (spec §3 "CPU register file" / Design
// Notes "Banked registers via pointer swapping"). A fixed 32-word array
// backs every bank; the 16 logical registers are a view (index
// translation) onto this array selected by the current mode, rather than
// an array of aliasing pointers.
const (
	physUsr0  = 0  // 0..15: user/system bank R0-R15
	physFiq8  = 16 // 16..22: FIQ bank R8-R14 (7 words)
	physSvc13 = 23 // 23..24: SVC bank R13-R14
	physAbt13 = 25 // 25..26: ABT bank R13-R14
	physIrq13 = 27 // 27..28: IRQ bank R13-R14
	physUnd13 = 29 // 29..30: UND bank R13-R14
)

// Mode is a CPSR mode field value.
type Mode uint32

const (
	ModeUSR Mode = 0x10
	ModeFIQ Mode = 0x11
	ModeIRQ Mode = 0x12
	ModeSVC Mode = 0x13
	ModeABT Mode = 0x17
	ModeUND Mode = 0x1B
	ModeSYS Mode = 0x1F
)

// registerFile holds all physical register storage and the current
// logical-to-physical view.
type registerFile struct {
	phys [31]uint32
	view [16]int

	// banked saved program status registers; spsrBank index follows
	// spsrIndexOf below. spsrValid mirrors the "pointer to current SPSR is
	// null in user/system" rule: there is no SPSR to write in USR/SYS.
	spsrBank  [5]uint32
	spsrValid bool
	spsrSlot  int
}

const (
	spsrFIQ = iota
	spsrSVC
	spsrABT
	spsrIRQ
	spsrUND
)

func (r *registerFile) reset() {
	for i := range r.phys {
		r.phys[i] = 0
	}
	for i := range r.spsrBank {
		r.spsrBank[i] = 0
	}
	r.swapRegisters(ModeSVC)
}

// R reads logical register i (0-15) through the current view.
func (r *registerFile) R(i int) uint32 {
	return r.phys[r.view[i]]
}

// SetR writes logical register i (0-15) through the current view.
func (r *registerFile) SetR(i int, v uint32) {
	r.phys[r.view[i]] = v
}

// usrR/SetUsrR give direct access to the user-bank physical registers,
// regardless of the current mode's view. Used by the LDM/STM user-bank (^)
// variant (spec §4.1 "Block transfer").
func (r *registerFile) usrR(i int) uint32     { return r.phys[physUsr0+i] }
func (r *registerFile) setUsrR(i int, v uint32) { r.phys[physUsr0+i] = v }

// swapRegisters re-points the logical view at the physical bank for mode.
// It is idempotent: swapping to the same mode twice, or swapping away and
// back, leaves every physical register's value untouched (spec §8
// "Universal invariants").
func (r *registerFile) swapRegisters(mode Mode) {
	for i := 0; i < 16; i++ {
		r.view[i] = physUsr0 + i
	}
	switch mode {
	case ModeUSR, ModeSYS:
		r.spsrValid = false
	case ModeFIQ:
		for i := 0; i < 7; i++ {
			r.view[8+i] = physFiq8 + i
		}
		r.spsrValid, r.spsrSlot = true, spsrFIQ
	case ModeSVC:
		r.view[13], r.view[14] = physSvc13, physSvc13+1
		r.spsrValid, r.spsrSlot = true, spsrSVC
	case ModeABT:
		r.view[13], r.view[14] = physAbt13, physAbt13+1
		r.spsrValid, r.spsrSlot = true, spsrABT
	case ModeIRQ:
		r.view[13], r.view[14] = physIrq13, physIrq13+1
		r.spsrValid, r.spsrSlot = true, spsrIRQ
	case ModeUND:
		r.view[13], r.view[14] = physUnd13, physUnd13+1
		r.spsrValid, r.spsrSlot = true, spsrUND
	default:
		// Unrecognised mode value: behave as user/system (no SPSR), matching
		// the original's "Unknown ARM9 mode" log-and-ignore behaviour.
		r.spsrValid = false
	}
}

// currentSPSR returns the SPSR for the current mode and whether one exists.
func (r *registerFile) currentSPSR() (uint32, bool) {
	if !r.spsrValid {
		return 0, false
	}
	return r.spsrBank[r.spsrSlot], true
}

// setCurrentSPSR writes the SPSR for the current mode, if one exists.
func (r *registerFile) setCurrentSPSR(v uint32) {
	if r.spsrValid {
		r.spsrBank[r.spsrSlot] = v
	}
}
