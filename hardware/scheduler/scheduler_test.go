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

package scheduler_test

import (
	"testing"

	"github.com/Hydr8gon/GamePawd/hardware/scheduler"
	"github.com/Hydr8gon/GamePawd/internal/runtest"
)

func TestScheduleReturnsAbsoluteCycles(t *testing.T) {
	s := scheduler.New()
	at := s.Schedule(func() {}, 10)
	runtest.ExpectEquality(t, at, uint64(10))

	s.Advance(5)
	at2 := s.Schedule(func() {}, 10)
	runtest.ExpectEquality(t, at2, uint64(15))
}

func TestEventsFireInOrderAtExactCycle(t *testing.T) {
	s := scheduler.New()
	var fired []string

	s.Schedule(func() { fired = append(fired, "b") }, 20)
	s.Schedule(func() { fired = append(fired, "a") }, 10)
	s.Schedule(func() { fired = append(fired, "c") }, 30)

	s.Advance(10)
	runtest.ExpectEquality(t, fired, []string{"a"})

	s.Advance(10)
	runtest.ExpectEquality(t, fired, []string{"a", "b"})

	s.Advance(10)
	runtest.ExpectEquality(t, fired, []string{"a", "b", "c"})
}

func TestQueueMonotonicallyAscending(t *testing.T) {
	s := scheduler.New()
	s.Schedule(func() {}, 100)
	s.Schedule(func() {}, 5)
	s.Schedule(func() {}, 50)

	head, ok := s.NextEventCycles()
	runtest.ExpectEquality(t, ok, true)
	runtest.ExpectEquality(t, head, uint64(5))
}

func TestRescheduleFromWithinTask(t *testing.T) {
	s := scheduler.New()
	count := 0
	var tick scheduler.Task
	tick = func() {
		count++
		if count < 3 {
			s.Schedule(tick, 1)
		}
	}
	s.Schedule(tick, 1)

	s.Advance(1)
	s.Advance(1)
	s.Advance(1)
	runtest.ExpectEquality(t, count, 3)
}
