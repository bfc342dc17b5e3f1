package rota

import (
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

// forEachDay calls fn for every day from 2023-01-01 through 2029-12-31,
// which covers negative offsets, leap years and every month boundary.
func forEachDay(fn func(d civil.Date)) {
	for d := date(2023, time.January, 1); !d.After(date(2029, time.December, 31)); d = d.AddDays(1) {
		fn(d)
	}
}

func TestFloorModDiv(t *testing.T) {
	tests := []struct {
		a, n     int
		mod, div int
	}{
		{0, 8, 0, 0},
		{7, 8, 7, 0},
		{8, 8, 0, 1},
		{17, 8, 1, 2},
		{-1, 8, 7, -1},
		{-8, 8, 0, -1},
		{-9, 8, 7, -2},
		{-16, 8, 0, -2},
		{-2, 3, 1, -1},
		{5, 3, 2, 1},
	}

	for _, tt := range tests {
		require.Equal(t, tt.mod, floorMod(tt.a, tt.n), "floorMod(%d, %d)", tt.a, tt.n)
		require.Equal(t, tt.div, floorDiv(tt.a, tt.n), "floorDiv(%d, %d)", tt.a, tt.n)
		// Division identity must hold for the floored pair.
		require.Equal(t, tt.a, floorDiv(tt.a, tt.n)*tt.n+floorMod(tt.a, tt.n))
	}
}

func TestAssign_AnchorDate(t *testing.T) {
	s := Default2026()

	for worker, anchor := range DefaultAnchors() {
		got := s.Assign(worker, DefaultAnchorDate)
		require.Equal(t, anchor.CyclePosition, got.CyclePosition, worker)

		want := anchor.Shift
		switch anchor.CyclePosition {
		case s.OffPosition():
			want = Off
		case s.RestPosition():
			want = Rest
		}
		require.Equal(t, want, got.Shift, worker)
	}
}

func TestAssign_FixedPoint(t *testing.T) {
	s := Default2026()

	// BALQIS starts the year on day 1 of a night block.
	require.Equal(t, Assignment{CyclePosition: 1, Shift: Night}, s.Assign("BALQIS", date(2026, time.January, 1)))
	require.Equal(t, Assignment{CyclePosition: 7, Shift: Off}, s.Assign("BALQIS", date(2026, time.January, 7)))
	require.Equal(t, Assignment{CyclePosition: 8, Shift: Rest}, s.Assign("BALQIS", date(2026, time.January, 8)))
	// Evening follows night in the rotation.
	require.Equal(t, Assignment{CyclePosition: 1, Shift: Evening}, s.Assign("BALQIS", date(2026, time.January, 9)))
	// And morning follows evening.
	require.Equal(t, Assignment{CyclePosition: 1, Shift: Morning}, s.Assign("BALQIS", date(2026, time.January, 17)))
}

func TestAssign_KnownDates(t *testing.T) {
	s := Default2026()

	tests := []struct {
		worker string
		date   civil.Date
		want   Assignment
	}{
		{"SITI", date(2026, time.January, 4), Assignment{8, Rest}},
		{"SITI", date(2026, time.January, 5), Assignment{1, Morning}},
		{"SITI", date(2025, time.December, 31), Assignment{4, Evening}},
		{"IRA", date(2026, time.January, 2), Assignment{8, Rest}},
		{"IRA", date(2026, time.January, 3), Assignment{1, Evening}},
		{"EKIN", date(2025, time.December, 29), Assignment{8, Rest}},
		{"EKIN", date(2025, time.December, 28), Assignment{7, Off}},
		// Before the anchor the previous block was evening.
		{"EKIN", date(2025, time.December, 27), Assignment{6, Evening}},
		// 2026-03-01 is 59 days after the anchor.
		{"BALQIS", date(2026, time.March, 1), Assignment{4, Evening}},
		{"BALQIS", date(2026, time.December, 31), Assignment{5, Night}},
	}

	for _, tt := range tests {
		t.Run(tt.worker+"_"+tt.date.String(), func(t *testing.T) {
			require.Equal(t, tt.want, s.Assign(tt.worker, tt.date))
		})
	}
}

func TestAssign_Periodicity(t *testing.T) {
	s := Default2026()
	period := s.SuperCycle()
	require.Equal(t, 24, period)

	for _, worker := range s.Roster() {
		forEachDay(func(d civil.Date) {
			require.Equal(t, s.Assign(worker, d), s.Assign(worker, d.AddDays(period)), "%s %s", worker, d)
		})
	}
}

func TestAssign_DailyAdvance(t *testing.T) {
	s := Default2026()
	rotation := s.Rotation()

	for _, worker := range s.Roster() {
		// Track the rotating shift of the current block across off and rest.
		var block ShiftKind
		forEachDay(func(d civil.Date) {
			today := s.Assign(worker, d)
			next := s.Assign(worker, d.AddDays(1))

			require.GreaterOrEqual(t, today.CyclePosition, 1)
			require.LessOrEqual(t, today.CyclePosition, s.CycleLength())

			switch today.CyclePosition {
			case s.OffPosition():
				require.Equal(t, Off, today.Shift)
			case s.RestPosition():
				require.Equal(t, Rest, today.Shift)
			default:
				require.True(t, today.Shift.IsWorking())
				if block != "" && today.CyclePosition > 1 {
					require.Equal(t, block, today.Shift, "shift changed mid-block for %s on %s", worker, d)
				}
				block = today.Shift
			}

			if today.CyclePosition == s.CycleLength() {
				require.Equal(t, 1, next.CyclePosition)
				if block == "" {
					return
				}
				idx := indexOf(rotation, block)
				require.Equal(t, rotation[(idx+1)%len(rotation)], next.Shift, "%s after %s", worker, d)
			} else {
				require.Equal(t, today.CyclePosition+1, next.CyclePosition)
			}
		})
	}
}

func TestAssign_SymmetryAroundAnchor(t *testing.T) {
	s := Default2026()
	period := s.SuperCycle()

	for _, worker := range s.Roster() {
		for k := 0; k <= 3*period; k++ {
			before := s.Assign(worker, DefaultAnchorDate.AddDays(-k))
			after := s.Assign(worker, DefaultAnchorDate.AddDays(floorMod(period-k, period)+period))
			require.Equal(t, before, after, "%s k=%d", worker, k)
		}
	}
}

func TestAssign_OrderIndependent(t *testing.T) {
	s := Default2026()

	forward := map[civil.Date]Assignment{}
	for d := date(2026, time.January, 1); !d.After(date(2026, time.December, 31)); d = d.AddDays(1) {
		forward[d] = s.Assign("EKIN", d)
	}
	for d := date(2026, time.December, 31); !d.Before(date(2026, time.January, 1)); d = d.AddDays(-1) {
		require.Equal(t, forward[d], s.Assign("EKIN", d))
	}
}

func TestAssign_UnknownWorker(t *testing.T) {
	s := Default2026()

	got := s.Assign("NONEXISTENT", date(2026, time.June, 15))
	require.Equal(t, Assignment{CyclePosition: 1, Shift: Morning}, got)

	_, ok := s.Lookup("NONEXISTENT", date(2026, time.June, 15))
	require.False(t, ok)

	_, ok = s.Lookup("SITI", date(2026, time.June, 15))
	require.True(t, ok)
}

func TestAssignTime_IgnoresClockAndZone(t *testing.T) {
	s := Default2026()
	want := s.Assign("IRA", date(2026, time.March, 29))

	kl := time.FixedZone("MYT", 8*60*60)
	require.Equal(t, want, s.AssignTime("IRA", time.Date(2026, time.March, 29, 0, 0, 0, 0, kl)))
	require.Equal(t, want, s.AssignTime("IRA", time.Date(2026, time.March, 29, 23, 59, 59, 0, kl)))
	require.Equal(t, want, s.AssignTime("IRA", time.Date(2026, time.March, 29, 1, 30, 0, 0, time.UTC)))
}

func TestAssign_Concurrent(t *testing.T) {
	s := Default2026()
	start := date(2026, time.January, 1)

	want := make([]Assignment, 365)
	for i := range want {
		want[i] = s.Assign("SITI", start.AddDays(i))
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range want {
				if got := s.Assign("SITI", start.AddDays(i)); got != want[i] {
					t.Errorf("day %d: got %+v, want %+v", i, got, want[i])
				}
			}
		}()
	}
	wg.Wait()
}

func TestAssignment_DayBadge(t *testing.T) {
	require.Equal(t, "D3", Assignment{CyclePosition: 3, Shift: Night}.DayBadge())
	require.Equal(t, "", Assignment{CyclePosition: 7, Shift: Off}.DayBadge())
	require.Equal(t, "", Assignment{CyclePosition: 8, Shift: Rest}.DayBadge())
}

func FuzzAssign(f *testing.F) {
	s := Default2026()
	f.Add(0, 0)
	f.Add(-1, 1)
	f.Add(100000, 2)
	f.Add(-100000, 3)

	f.Fuzz(func(t *testing.T, offset, w int) {
		// Stay well inside the range civil.Date can represent.
		if offset > 1_000_000 || offset < -1_000_000 {
			t.Skip()
		}
		roster := s.Roster()
		worker := roster[floorMod(w, len(roster))]
		d := DefaultAnchorDate.AddDays(offset)

		got := s.Assign(worker, d)
		if got.CyclePosition < 1 || got.CyclePosition > s.CycleLength() {
			t.Fatalf("position %d out of range", got.CyclePosition)
		}
		if got != s.Assign(worker, d.AddDays(s.SuperCycle())) {
			t.Fatalf("not periodic at offset %d", offset)
		}
		if got != s.Assign(worker, d.AddDays(-s.SuperCycle())) {
			t.Fatalf("not periodic backwards at offset %d", offset)
		}
	})
}

func indexOf(rotation []ShiftKind, k ShiftKind) int {
	for i, r := range rotation {
		if r == k {
			return i
		}
	}
	return -1
}
