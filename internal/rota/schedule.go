// Package rota computes shift assignments for a rotating work cycle.
//
// A worker's assignment on any date is derived arithmetically from a fixed
// anchor: the shift and cycle position that worker held on the anchor date.
// Nothing is stored or simulated day by day, so results are identical no
// matter which dates are queried or in which order.
package rota

import (
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/civil"
)

// ShiftKind is the kind of shift a worker is on for a day.
type ShiftKind string

const (
	Morning ShiftKind = "morning"
	Evening ShiftKind = "evening"
	Night   ShiftKind = "night"

	// Off and Rest are the two non-working days closing every cycle.
	Off  ShiftKind = "off"
	Rest ShiftKind = "rest"
)

// ValidShiftKinds returns every shift kind, rotating kinds first.
func ValidShiftKinds() []ShiftKind {
	return []ShiftKind{Morning, Evening, Night, Off, Rest}
}

// IsValid checks if a shift kind is known.
func (k ShiftKind) IsValid() bool {
	return slices.Contains(ValidShiftKinds(), k)
}

// IsWorking reports whether the kind is a rotating (working) shift.
func (k ShiftKind) IsWorking() bool {
	return k.IsValid() && k != Off && k != Rest
}

// WorkerAnchor is a worker's known state on the schedule's anchor date.
type WorkerAnchor struct {
	Shift         ShiftKind `json:"shift" yaml:"shift"`
	CyclePosition int       `json:"cycle_position" yaml:"cycle_position"` // 1..CycleLength
}

// Schedule is the immutable configuration of a rotating roster.
// All methods are safe for concurrent use.
type Schedule struct {
	anchorDate  civil.Date
	cycleLength int
	rotation    []ShiftKind
	roster      []string
	anchors     map[string]WorkerAnchor
}

// ErrInvalidSchedule is returned by NewSchedule for unusable configuration.
var ErrInvalidSchedule = errors.New("invalid schedule")

// NewSchedule validates and builds a schedule. The rotation, roster and
// anchors are copied, so later changes by the caller have no effect.
//
// Every roster entry must have an anchor. An anchor on a working position
// (1..cycleLength-2) must name a shift from the rotation; an anchor on the
// off or rest position still needs a rotating shift so the engine knows
// which block the worker is in.
func NewSchedule(anchorDate civil.Date, cycleLength int, rotation []ShiftKind, roster []string, anchors map[string]WorkerAnchor) (*Schedule, error) {
	var errs []error

	if !anchorDate.IsValid() {
		errs = append(errs, fmt.Errorf("anchor date %s is not a valid date", anchorDate))
	}

	// Need at least one working day plus off and rest.
	if cycleLength < 3 {
		errs = append(errs, fmt.Errorf("cycle length must be at least 3, got %d", cycleLength))
	}

	if len(rotation) == 0 {
		errs = append(errs, errors.New("rotation order must not be empty"))
	}
	seen := make(map[ShiftKind]bool, len(rotation))
	for _, k := range rotation {
		if !k.IsWorking() {
			errs = append(errs, fmt.Errorf("rotation entry %q is not a rotating shift", k))
		}
		if seen[k] {
			errs = append(errs, fmt.Errorf("rotation entry %q appears more than once", k))
		}
		seen[k] = true
	}

	if len(roster) == 0 {
		errs = append(errs, errors.New("roster must not be empty"))
	}
	names := make(map[string]bool, len(roster))
	for _, name := range roster {
		if name == "" {
			errs = append(errs, errors.New("roster contains an empty worker name"))
			continue
		}
		if names[name] {
			errs = append(errs, fmt.Errorf("worker %q listed twice in roster", name))
		}
		names[name] = true

		a, ok := anchors[name]
		if !ok {
			errs = append(errs, fmt.Errorf("worker %q has no anchor", name))
			continue
		}
		if a.CyclePosition < 1 || a.CyclePosition > cycleLength {
			errs = append(errs, fmt.Errorf("worker %q anchor position %d outside 1..%d", name, a.CyclePosition, cycleLength))
		}
		if !seen[a.Shift] {
			errs = append(errs, fmt.Errorf("worker %q anchor shift %q is not in the rotation", name, a.Shift))
		}
	}
	for name := range anchors {
		if !names[name] {
			errs = append(errs, fmt.Errorf("anchor for %q has no roster entry", name))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, errors.Join(errs...))
	}

	s := &Schedule{
		anchorDate:  anchorDate,
		cycleLength: cycleLength,
		rotation:    slices.Clone(rotation),
		roster:      slices.Clone(roster),
		anchors:     make(map[string]WorkerAnchor, len(anchors)),
	}
	for name, a := range anchors {
		s.anchors[name] = a
	}
	return s, nil
}

// AnchorDate returns the date all offsets are measured from.
func (s *Schedule) AnchorDate() civil.Date { return s.anchorDate }

// CycleLength returns the number of days in one cycle, off and rest included.
func (s *Schedule) CycleLength() int { return s.cycleLength }

// Rotation returns a copy of the rotating shift order.
func (s *Schedule) Rotation() []ShiftKind { return slices.Clone(s.rotation) }

// Roster returns a copy of the worker names in display order.
func (s *Schedule) Roster() []string { return slices.Clone(s.roster) }

// Anchor returns the configured anchor for a worker.
func (s *Schedule) Anchor(worker string) (WorkerAnchor, bool) {
	a, ok := s.anchors[worker]
	return a, ok
}

// HasWorker reports whether the worker is on the roster.
func (s *Schedule) HasWorker(worker string) bool {
	_, ok := s.anchors[worker]
	return ok
}

// SuperCycle is the number of days after which every worker's assignment
// repeats: one cycle per rotating shift.
func (s *Schedule) SuperCycle() int {
	return s.cycleLength * len(s.rotation)
}

// OffPosition and RestPosition are the cycle positions of the two
// non-working days.
func (s *Schedule) OffPosition() int  { return s.cycleLength - 1 }
func (s *Schedule) RestPosition() int { return s.cycleLength }
