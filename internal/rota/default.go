package rota

import (
	"time"

	"cloud.google.com/go/civil"
)

// The 2026 roster.
const (
	DefaultYear        = 2026
	DefaultCycleLength = 8 // six working days, then off, then rest
)

// DefaultAnchorDate is 1 January 2026.
var DefaultAnchorDate = civil.Date{Year: DefaultYear, Month: time.January, Day: 1}

// DefaultRotation is the order shifts follow from one cycle to the next.
func DefaultRotation() []ShiftKind {
	return []ShiftKind{Morning, Night, Evening}
}

// DefaultRoster lists the workers in display order.
func DefaultRoster() []string {
	return []string{"SITI", "IRA", "EKIN", "BALQIS"}
}

// DefaultAnchors is each worker's state on 1 January 2026, taken from the
// published day-by-day schedule.
func DefaultAnchors() map[string]WorkerAnchor {
	return map[string]WorkerAnchor{
		"SITI":   {Shift: Evening, CyclePosition: 5},
		"IRA":    {Shift: Night, CyclePosition: 7},
		"EKIN":   {Shift: Morning, CyclePosition: 3},
		"BALQIS": {Shift: Night, CyclePosition: 1},
	}
}

// Default2026 returns the fixed 2026 schedule.
func Default2026() *Schedule {
	s, err := NewSchedule(DefaultAnchorDate, DefaultCycleLength, DefaultRotation(), DefaultRoster(), DefaultAnchors())
	if err != nil {
		// The default data is constant; failing here is a programming error.
		panic(err)
	}
	return s
}
