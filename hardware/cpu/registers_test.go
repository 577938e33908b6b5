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

import "testing"

import "github.com/Hydr8gon/GamePawd/internal/runtest"

func TestSwapRegistersIsIdempotentAcrossModes(t *testing.T) {
	var r registerFile
	r.reset()
	r.SetR(13, 0xAAAAAAAA)

	r.swapRegisters(ModeIRQ)
	r.SetR(13, 0xBBBBBBBB)
	r.swapRegisters(ModeSVC)
	runtest.ExpectEquality(t, r.R(13), uint32(0xAAAAAAAA))

	r.swapRegisters(ModeIRQ)
	runtest.ExpectEquality(t, r.R(13), uint32(0xBBBBBBBB))
}

func TestSwapRegistersLeavesLowRegistersShared(t *testing.T) {
	var r registerFile
	r.reset()
	r.SetR(0, 0x12345678)
	r.swapRegisters(ModeFIQ)
	runtest.ExpectEquality(t, r.R(0), uint32(0x12345678))
}

func TestFIQBanksR8ThroughR14(t *testing.T) {
	var r registerFile
	r.reset()
	r.SetR(8, 0x1)
	r.swapRegisters(ModeFIQ)
	r.SetR(8, 0x2)
	r.swapRegisters(ModeSVC)
	runtest.ExpectEquality(t, r.R(8), uint32(0x1))
	r.swapRegisters(ModeFIQ)
	runtest.ExpectEquality(t, r.R(8), uint32(0x2))
}

func TestUsrRIsUnaffectedByCurrentBank(t *testing.T) {
	var r registerFile
	r.reset()
	r.swapRegisters(ModeFIQ)
	r.SetR(9, 0xDEAD)
	runtest.ExpectEquality(t, r.usrR(9), uint32(0))
	r.setUsrR(9, 0xBEEF)
	runtest.ExpectEquality(t, r.usrR(9), uint32(0xBEEF))
	runtest.ExpectEquality(t, r.R(9), uint32(0xDEAD))
}

func TestSPSRValidOnlyOutsideUsrAndSys(t *testing.T) {
	var r registerFile
	r.reset()

	r.swapRegisters(ModeUSR)
	if _, ok := r.currentSPSR(); ok {
		t.Fatal("expected no SPSR in USR mode")
	}

	r.swapRegisters(ModeABT)
	r.setCurrentSPSR(0x13)
	v, ok := r.currentSPSR()
	if !ok {
		t.Fatal("expected an SPSR in ABT mode")
	}
	runtest.ExpectEquality(t, v, uint32(0x13))
}

func TestSPSRBanksAreIndependentPerMode(t *testing.T) {
	var r registerFile
	r.reset()

	r.swapRegisters(ModeSVC)
	r.setCurrentSPSR(0x111)
	r.swapRegisters(ModeUND)
	r.setCurrentSPSR(0x222)

	r.swapRegisters(ModeSVC)
	v, _ := r.currentSPSR()
	runtest.ExpectEquality(t, v, uint32(0x111))
}

func TestResetStartsInSVCWithZeroedRegisters(t *testing.T) {
	var r registerFile
	r.SetR(13, 0xFFFFFFFF) // pre-reset garbage in the user bank
	r.reset()
	runtest.ExpectEquality(t, r.R(13), uint32(0))
	if _, ok := r.currentSPSR(); !ok {
		t.Fatal("expected reset to leave the CPU in a mode with an SPSR (SVC)")
	}
}
