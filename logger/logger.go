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

// Package logger implements a simple ring-buffer logger for the emulation
// core. Every peripheral stub logs through here rather than directly to
// stdout, so that the debug/monitor port (see cmd/drc9) can tail the same
// stream a terminal would see.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Permission gates whether a call to Log/Logf actually records an entry.
// Most callers pass the Allow sentinel; a permission type is useful when a
// caller wants to silence a noisy source (e.g. a register poked every
// instruction) without touching call sites.
type Permission interface {
	AllowLogging() bool
}

type allowAll struct{}

func (allowAll) AllowLogging() bool { return true }

// Allow is the permission value that always allows logging.
var Allow Permission = allowAll{}

type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s\n", e.tag, e.detail)
}

// Logger is a bounded ring-buffer of log entries.
type Logger struct {
	mu       sync.Mutex
	capacity int
	entries  []entry
}

// NewLogger creates a Logger that retains at most capacity entries.
func NewLogger(capacity int) *Logger {
	return &Logger{capacity: capacity}
}

// Log records detail under tag, unless permission refuses it. detail is
// rendered through Error(), String() or %v, in that preference order.
func (l *Logger) Log(permission Permission, tag string, detail interface{}) {
	if permission != nil && !permission.AllowLogging() {
		return
	}
	l.append(tag, render(detail))
}

// Logf is Log with fmt.Sprintf-style formatting of detail.
func (l *Logger) Logf(permission Permission, tag string, format string, args ...interface{}) {
	if permission != nil && !permission.AllowLogging() {
		return
	}
	l.append(tag, fmt.Sprintf(format, args...))
}

func render(detail interface{}) string {
	switch v := detail.(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (l *Logger) append(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{tag: tag, detail: detail})
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Clear discards all recorded entries.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Write renders every retained entry to w, oldest first.
func (l *Logger) Write(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.String())
	}
	io.WriteString(w, b.String())
}

// Tail renders at most the n most recent entries to w, oldest first.
func (l *Logger) Tail(w io.Writer, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	var b strings.Builder
	for _, e := range l.entries[len(l.entries)-n:] {
		b.WriteString(e.String())
	}
	io.WriteString(w, b.String())
}

// central is the default logger instance used by the package-level
// convenience functions. Peripheral packages (spi, i2c, wifi, ...) log
// through these rather than carrying a *Logger reference of their own, the
// way gopher2600's hardware packages call the package-level logger.
var central = NewLogger(1000)

// Log records detail under tag on the central logger.
func Log(permission Permission, tag string, detail interface{}) {
	central.Log(permission, tag, detail)
}

// Logf is Log with fmt.Sprintf-style formatting.
func Logf(permission Permission, tag string, format string, args ...interface{}) {
	central.Logf(permission, tag, format, args...)
}

// Write renders the central logger's entries to w.
func Write(w io.Writer) {
	central.Write(w)
}

// Tail renders the central logger's n most recent entries to w.
func Tail(w io.Writer, n int) {
	central.Tail(w, n)
}

// Clear discards all entries recorded on the central logger.
func Clear() {
	central.Clear()
}
