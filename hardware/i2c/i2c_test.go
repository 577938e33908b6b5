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

package i2c_test

import (
	"testing"

	"github.com/Hydr8gon/GamePawd/hardware/i2c"
	"github.com/Hydr8gon/GamePawd/internal/runtest"
)

type fakeIRQ struct {
	requested []int
}

func (f *fakeIRQ) RequestIRQ(line int) { f.requested = append(f.requested, line) }

func startTransaction(c *i2c.I2C, bus int, deviceID, command uint8) {
	c.WriteControl(bus, 0xFFFFFFFF, 0x1) // start bit, edge-triggered
	c.WriteData(bus, deviceID)
	c.WriteData(bus, command)
}

func TestLCDIdentificationStreamsFourBytes(t *testing.T) {
	c := i2c.New(&fakeIRQ{})
	c.Reset()
	startTransaction(c, 0, 0x39, 0xBF)

	want := []uint32{0x00, 0x00, 0x00, 0x02}
	for _, w := range want {
		runtest.ExpectEquality(t, c.ReadData(0), w)
	}
}

func TestCameraCannedReplies(t *testing.T) {
	c := i2c.New(&fakeIRQ{})
	c.Reset()
	startTransaction(c, 0, 0x21, 0x9C)
	runtest.ExpectEquality(t, c.ReadData(0), uint32(0x1D))
}

func TestUnknownDeviceReturnsZero(t *testing.T) {
	c := i2c.New(&fakeIRQ{})
	c.Reset()
	startTransaction(c, 0, 0x7A, 0x00)
	runtest.ExpectEquality(t, c.ReadData(0), uint32(0x00))
}

func TestStartEdgeResetsByteIndexAndSetsInProgress(t *testing.T) {
	c := i2c.New(&fakeIRQ{})
	c.Reset()
	c.WriteControl(0, 0xFFFFFFFF, 0x1)
	runtest.ExpectEquality(t, c.ReadStatus(0)&0x2, uint32(0x2))
}

func TestStopEdgeClearsInProgress(t *testing.T) {
	c := i2c.New(&fakeIRQ{})
	c.Reset()
	c.WriteControl(0, 0xFFFFFFFF, 0x1)
	c.WriteControl(0, 0xFFFFFFFF, 0x3) // stop bit rising too
	runtest.ExpectEquality(t, c.ReadStatus(0)&0x2, uint32(0))
}

func TestPerBusIRQEnableRaisesSharedLine(t *testing.T) {
	irq := &fakeIRQ{}
	c := i2c.New(irq)
	c.Reset()
	c.WriteControl(1, 0xFFFFFFFF, 0x80) // per-bus IRQ enable, no start edge
	c.WriteData(1, 0x00)

	runtest.ExpectEquality(t, irq.requested, []int{15})
	runtest.ExpectEquality(t, c.ReadIRQFlags()&(1<<1), uint32(1<<1))
}

func TestClearIRQFlags(t *testing.T) {
	irq := &fakeIRQ{}
	c := i2c.New(irq)
	c.Reset()
	c.WriteControl(0, 0xFFFFFFFF, 0x80)
	c.WriteData(0, 0x00)
	c.ClearIRQFlags(1 << 0)
	runtest.ExpectEquality(t, c.ReadIRQFlags(), uint32(0))
}

func TestHostConnTxReadsLCDIdentificationInOneCall(t *testing.T) {
	c := i2c.New(&fakeIRQ{})
	c.Reset()
	c.WriteControl(0, 0xFFFFFFFF, 0x1) // start bit, edge-triggered

	r := make([]byte, 4)
	if err := c.Conn(0).Tx(0x39, []byte{0xBF}, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runtest.ExpectEquality(t, r, []byte{0x00, 0x00, 0x00, 0x02})
}

func TestBusesAreIndependent(t *testing.T) {
	c := i2c.New(&fakeIRQ{})
	c.Reset()
	startTransaction(c, 0, 0x39, 0xBF)
	startTransaction(c, 1, 0x21, 0x0A)

	runtest.ExpectEquality(t, c.ReadData(0), uint32(0x00))
	runtest.ExpectEquality(t, c.ReadData(1), uint32(0x77))
}
