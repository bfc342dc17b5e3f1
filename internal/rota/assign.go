package rota

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Assignment is a worker's shift on one day. It is always recomputed and
// never stored.
type Assignment struct {
	CyclePosition int       `json:"cycle_position"` // 1..CycleLength
	Shift         ShiftKind `json:"shift"`
}

// IsWorkday reports whether the assignment is a working shift.
func (a Assignment) IsWorkday() bool {
	return a.Shift.IsWorking()
}

// DayBadge returns the "D<n>" badge shown on working days, or "" on the
// off and rest days.
func (a Assignment) DayBadge() string {
	if !a.IsWorkday() {
		return ""
	}
	return fmt.Sprintf("D%d", a.CyclePosition)
}

// Assign returns the worker's assignment on date.
//
// An unknown worker does not fail: it gets day 1 of the first rotating
// shift, so a caller rendering many workers is never blanked by one bad
// name. Use Lookup to tell the two cases apart.
func (s *Schedule) Assign(worker string, date civil.Date) Assignment {
	a, _ := s.Lookup(worker, date)
	return a
}

// AssignTime is Assign for a time.Time, taking the calendar date the value
// shows in its own location. Time of day is ignored.
func (s *Schedule) AssignTime(worker string, t time.Time) Assignment {
	return s.Assign(worker, civil.DateOf(t))
}

// Lookup is Assign, also reporting whether the worker is on the roster.
func (s *Schedule) Lookup(worker string, date civil.Date) (Assignment, bool) {
	anchor, ok := s.anchors[worker]
	if !ok {
		return s.fallback(), false
	}

	// civil.Date carries no clock or zone, so the difference is an exact
	// whole number of days in either direction.
	diffDays := date.DaysSince(s.anchorDate)

	overall := anchor.CyclePosition - 1 + diffDays
	position := floorMod(overall, s.cycleLength) + 1
	blocks := floorDiv(overall, s.cycleLength)

	var shift ShiftKind
	switch position {
	case s.OffPosition():
		shift = Off
	case s.RestPosition():
		shift = Rest
	default:
		start := s.rotationIndex(anchor.Shift)
		shift = s.rotation[floorMod(start+blocks, len(s.rotation))]
	}

	return Assignment{CyclePosition: position, Shift: shift}, true
}

func (s *Schedule) fallback() Assignment {
	return Assignment{CyclePosition: 1, Shift: s.rotation[0]}
}

// rotationIndex is the index of k in the rotation. NewSchedule guarantees
// every anchor shift is present.
func (s *Schedule) rotationIndex(k ShiftKind) int {
	for i, r := range s.rotation {
		if r == k {
			return i
		}
	}
	return 0
}

// floorMod returns a mod n in [0, n) for n > 0. Go's % truncates toward
// zero and would give a negative result for negative a.
func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// floorDiv returns a / n rounded toward negative infinity for n > 0.
func floorDiv(a, n int) int {
	q := a / n
	if a%n < 0 {
		q--
	}
	return q
}
