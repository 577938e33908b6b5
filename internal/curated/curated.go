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

// Package curated implements a small curated-error type, in the manner of
// gopher2600's errors package: a caller can classify a returned error by its
// head message without string-matching the fully formatted text. Almost
// everything in this emulator is non-fatal and goes through logger instead;
// this package exists for the handful of genuinely fatal conditions (a
// malformed firmware container that the loader cannot make any sense of at
// all).
package curated

import (
	"fmt"
	"strings"
)

// Values is the type used for the formatting arguments of a curated error.
type Values []interface{}

type curated struct {
	message string
	values  Values
}

// Errorf creates a new curated error. message is both the classification
// head and a fmt verb string applied to values.
func Errorf(message string, values ...interface{}) error {
	return curated{message: message, values: values}
}

// Error implements the error interface.
func (e curated) Error() string {
	s := fmt.Errorf(e.message, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Head returns the leading classification message of err, or err.Error() if
// err is not a curated error.
func Head(err error) string {
	if e, ok := err.(curated); ok {
		return e.message
	}
	return err.Error()
}

// Is reports whether err is a curated error with the given head.
func Is(err error, head string) bool {
	if err == nil {
		return false
	}
	e, ok := err.(curated)
	return ok && e.message == head
}
