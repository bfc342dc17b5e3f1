package rota

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule_Validation(t *testing.T) {
	tests := []struct {
		name    string
		anchor  civil.Date
		length  int
		rot     []ShiftKind
		roster  []string
		anchors map[string]WorkerAnchor
		wantErr bool
	}{
		{
			name:    "default",
			anchor:  DefaultAnchorDate,
			length:  8,
			rot:     DefaultRotation(),
			roster:  DefaultRoster(),
			anchors: DefaultAnchors(),
		},
		{
			name:    "invalid anchor date",
			anchor:  civil.Date{Year: 2026, Month: time.February, Day: 30},
			length:  8,
			rot:     DefaultRotation(),
			roster:  DefaultRoster(),
			anchors: DefaultAnchors(),
			wantErr: true,
		},
		{
			name:    "cycle too short",
			anchor:  DefaultAnchorDate,
			length:  2,
			rot:     []ShiftKind{Morning},
			roster:  []string{"A"},
			anchors: map[string]WorkerAnchor{"A": {Morning, 1}},
			wantErr: true,
		},
		{
			name:    "empty rotation",
			anchor:  DefaultAnchorDate,
			length:  8,
			roster:  []string{"A"},
			anchors: map[string]WorkerAnchor{"A": {Morning, 1}},
			wantErr: true,
		},
		{
			name:    "off in rotation",
			anchor:  DefaultAnchorDate,
			length:  8,
			rot:     []ShiftKind{Morning, Off},
			roster:  []string{"A"},
			anchors: map[string]WorkerAnchor{"A": {Morning, 1}},
			wantErr: true,
		},
		{
			name:    "duplicate rotation entry",
			anchor:  DefaultAnchorDate,
			length:  8,
			rot:     []ShiftKind{Morning, Morning},
			roster:  []string{"A"},
			anchors: map[string]WorkerAnchor{"A": {Morning, 1}},
			wantErr: true,
		},
		{
			name:    "position out of range",
			anchor:  DefaultAnchorDate,
			length:  8,
			rot:     DefaultRotation(),
			roster:  []string{"A"},
			anchors: map[string]WorkerAnchor{"A": {Morning, 9}},
			wantErr: true,
		},
		{
			name:    "anchor shift not rotating",
			anchor:  DefaultAnchorDate,
			length:  8,
			rot:     DefaultRotation(),
			roster:  []string{"A"},
			anchors: map[string]WorkerAnchor{"A": {Rest, 8}},
			wantErr: true,
		},
		{
			name:    "worker without anchor",
			anchor:  DefaultAnchorDate,
			length:  8,
			rot:     DefaultRotation(),
			roster:  []string{"A", "B"},
			anchors: map[string]WorkerAnchor{"A": {Morning, 1}},
			wantErr: true,
		},
		{
			name:    "anchor without worker",
			anchor:  DefaultAnchorDate,
			length:  8,
			rot:     DefaultRotation(),
			roster:  []string{"A"},
			anchors: map[string]WorkerAnchor{"A": {Morning, 1}, "B": {Night, 2}},
			wantErr: true,
		},
		{
			name:    "duplicate worker",
			anchor:  DefaultAnchorDate,
			length:  8,
			rot:     DefaultRotation(),
			roster:  []string{"A", "A"},
			anchors: map[string]WorkerAnchor{"A": {Morning, 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSchedule(tt.anchor, tt.length, tt.rot, tt.roster, tt.anchors)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSchedule)
				require.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}

func TestNewSchedule_CopiesInput(t *testing.T) {
	rot := DefaultRotation()
	roster := DefaultRoster()
	anchors := DefaultAnchors()

	s, err := NewSchedule(DefaultAnchorDate, DefaultCycleLength, rot, roster, anchors)
	require.NoError(t, err)

	before := s.Assign("SITI", DefaultAnchorDate.AddDays(40))
	rot[0] = Evening
	roster[0] = "X"
	anchors["SITI"] = WorkerAnchor{Shift: Night, CyclePosition: 2}

	require.Equal(t, before, s.Assign("SITI", DefaultAnchorDate.AddDays(40)))
	require.Equal(t, DefaultRoster(), s.Roster())
	require.Equal(t, DefaultRotation(), s.Rotation())
}

func TestSchedule_ShortCycle(t *testing.T) {
	// A three-day cycle: one working day, then off, then rest.
	s, err := NewSchedule(DefaultAnchorDate, 3, []ShiftKind{Morning, Night}, []string{"A"},
		map[string]WorkerAnchor{"A": {Shift: Morning, CyclePosition: 1}})
	require.NoError(t, err)

	want := []Assignment{
		{1, Morning}, {2, Off}, {3, Rest},
		{1, Night}, {2, Off}, {3, Rest},
		{1, Morning},
	}
	for i, w := range want {
		require.Equal(t, w, s.Assign("A", DefaultAnchorDate.AddDays(i)), "day %d", i)
	}
	require.Equal(t, Assignment{3, Rest}, s.Assign("A", DefaultAnchorDate.AddDays(-1)))
	require.Equal(t, Assignment{1, Night}, s.Assign("A", DefaultAnchorDate.AddDays(-3)))
}

func TestShiftKind(t *testing.T) {
	require.True(t, Morning.IsWorking())
	require.True(t, Night.IsWorking())
	require.False(t, Off.IsWorking())
	require.False(t, Rest.IsWorking())
	require.False(t, ShiftKind("lunch").IsValid())
	require.False(t, ShiftKind("lunch").IsWorking())
}
