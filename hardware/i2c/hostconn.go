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

package i2c

import "periph.io/x/conn/v3/i2c"

// HostConn adapts one bus to periph.io/x/conn/v3/i2c's Conn contract, so an
// i2c.Dev built on top of it drives the device id / command / reply state
// machine through a single Tx call (spec §4.9) instead of one MMIO register
// write at a time.
type HostConn struct {
	c *I2C
	n int
}

// Conn returns an i2c.Conn-shaped handle onto bus n.
func (c *I2C) Conn(n int) i2c.Conn { return HostConn{c, n} }

// Tx writes addr as the device id byte followed by every byte of w (the
// first of which becomes the command, per WriteData's byte-index contract),
// then pulls len(r) canned-reply bytes back.
func (h HostConn) Tx(addr uint16, w, r []byte) error {
	h.c.WriteData(h.n, byte(addr))
	for _, b := range w {
		h.c.WriteData(h.n, b)
	}
	for i := range r {
		r[i] = byte(h.c.ReadData(h.n))
	}
	return nil
}
