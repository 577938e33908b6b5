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

import "periph.io/x/conn/v3"

// HostConn adapts Spi's byte-at-a-time wire protocol to periph.io/x/conn/v3's
// conn.Conn shape, so a real host driver (or anything else written against
// that interface) can drive a whole transaction with one Tx call instead of
// stepping WriteControl/WriteData/ReadData one register at a time.
type HostConn struct{ s *Spi }

// Conn returns a conn.Conn-shaped handle onto s (spec §4.7's wire protocol,
// addressed the way a real host SPI driver would address the part).
func (s *Spi) Conn() conn.Conn { return HostConn{s} }

func (h HostConn) String() string { return "gamepawd-spi" }

// Duplex reports the bus as half-duplex: the wire protocol always writes a
// full command/address/data phase before any read phase begins.
func (h HostConn) Duplex() conn.Duplex { return conn.Half }

// Tx writes every byte of w through the wire protocol, then switches to read
// direction and pulls len(r) bytes back the same way (spec §4.7).
func (h HostConn) Tx(w, r []byte) error {
	h.s.WriteControl(ctrlDirRead, 0)
	for _, b := range w {
		h.s.WriteData(0xFF, uint32(b))
	}
	if len(r) > 0 {
		h.s.WriteControl(ctrlDirRead, ctrlDirRead)
		h.s.WriteReadCount(0xFFFFFFFF, uint32(len(r)))
		for i := range r {
			r[i] = byte(h.s.ReadData())
		}
	}
	return nil
}
