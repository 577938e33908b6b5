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

func TestShiftLSLImmZeroLeavesCarryUntouched(t *testing.T) {
	v, _, valid := shiftLSLImm(0xFFFFFFFF, 0)
	runtest.ExpectEquality(t, v, uint32(0xFFFFFFFF))
	runtest.ExpectEquality(t, valid, false)
}

func TestShiftLSLImmThirtyTwoIsZeroWithCarryFromBit0(t *testing.T) {
	v, c, valid := shiftLSLImm(0x1, 32)
	runtest.ExpectEquality(t, v, uint32(0))
	runtest.ExpectEquality(t, c, true)
	runtest.ExpectEquality(t, valid, true)
}

func TestShiftLSRImmZeroEncodesLSRThirtyTwo(t *testing.T) {
	v, c, valid := shiftLSRImm(0x80000000, 0)
	runtest.ExpectEquality(t, v, uint32(0))
	runtest.ExpectEquality(t, c, true)
	runtest.ExpectEquality(t, valid, true)
}

func TestShiftASRImmSignExtendsNegative(t *testing.T) {
	v, c, valid := shiftASRImm(0x80000000, 4)
	runtest.ExpectEquality(t, v, uint32(0xF8000000))
	runtest.ExpectEquality(t, c, false)
	runtest.ExpectEquality(t, valid, true)
}

func TestShiftASRImmThirtyTwoOrMoreSignSaturates(t *testing.T) {
	v, c, _ := shiftASRImm(0x80000000, 32)
	runtest.ExpectEquality(t, v, uint32(0xFFFFFFFF))
	runtest.ExpectEquality(t, c, true)
}

func TestShiftRORImmZeroIsRRX(t *testing.T) {
	v, c, valid := shiftRORImm(0x1, 0, true)
	runtest.ExpectEquality(t, v, uint32(0x80000000))
	runtest.ExpectEquality(t, c, true)
	runtest.ExpectEquality(t, valid, true)
}

func TestShiftRORRegZeroLeavesCarryUntouched(t *testing.T) {
	v, _, valid := shiftRORReg(0x12345678, 0)
	runtest.ExpectEquality(t, v, uint32(0x12345678))
	runtest.ExpectEquality(t, valid, false)
}

func TestShiftRORRegMultipleOfThirtyTwoIsUnchangedCarryFromBit31(t *testing.T) {
	v, c, _ := shiftRORReg(0x80000001, 32)
	runtest.ExpectEquality(t, v, uint32(0x80000001))
	runtest.ExpectEquality(t, c, true)
}

func TestRotatedImmediateZeroRotateLeavesCarryUntouched(t *testing.T) {
	v, _, valid := rotatedImmediate(0xFF, 0)
	runtest.ExpectEquality(t, v, uint32(0xFF))
	runtest.ExpectEquality(t, valid, false)
}

func TestRotatedImmediateRotatesByTwiceTheField(t *testing.T) {
	// rotateField=8 -> rotate right by 16: 0x000000FF -> 0x00FF0000.
	v, c, valid := rotatedImmediate(0xFF, 8)
	runtest.ExpectEquality(t, v, uint32(0x00FF0000))
	runtest.ExpectEquality(t, c, false)
	runtest.ExpectEquality(t, valid, true)
}

func TestRotateMisaligned32RotatesByAddressLowBits(t *testing.T) {
	runtest.ExpectEquality(t, rotateMisaligned32(0x44332211, 0), uint32(0x44332211))
	runtest.ExpectEquality(t, rotateMisaligned32(0x44332211, 2), uint32(0x22114433))
}
