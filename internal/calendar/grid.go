package calendar

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/zapponejosh/shift-rota/internal/rota"
)

// GridCells is the number of cells in a month grid: six weeks of seven days.
// Every month fits, and all grids have the same height.
const GridCells = 42

// DayNames are the grid column headers. Weeks start on Sunday.
var DayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Assigner computes a worker's assignment for a date.
// *rota.Schedule satisfies it.
type Assigner interface {
	Assign(worker string, date civil.Date) rota.Assignment
}

// Entry is one worker's line in a day cell.
type Entry struct {
	Worker     string          `json:"worker"`
	Assignment rota.Assignment `json:"assignment"`
}

// Cell is one grid square. Padding cells before the 1st and after the last
// day are Empty and carry no date.
type Cell struct {
	Empty   bool       `json:"empty"`
	Date    civil.Date `json:"date"`
	Entries []Entry    `json:"entries,omitempty"`
}

// MonthView is a month laid out as a 7-column grid.
type MonthView struct {
	Month   Month    `json:"month"`
	Workers []string `json:"workers"`
	Cells   []Cell   `json:"cells"`
}

// Title returns the heading for the view, e.g. "March 2026".
func (v MonthView) Title() string {
	return v.Month.Title()
}

// Leading returns the number of empty cells before the 1st.
func (v MonthView) Leading() int {
	for i, c := range v.Cells {
		if !c.Empty {
			return i
		}
	}
	return len(v.Cells)
}

// BuildMonth lays out month m for the selected workers, asking a for each
// (worker, day) pair once.
func BuildMonth(a Assigner, m Month, sel Selection) MonthView {
	workers := sel.Workers()
	view := MonthView{
		Month:   m,
		Workers: workers,
		Cells:   make([]Cell, 0, GridCells),
	}

	first := m.First()
	leading := int(Weekday(first) - time.Sunday)
	for range leading {
		view.Cells = append(view.Cells, Cell{Empty: true})
	}

	days := m.Days()
	for i := 0; i < days; i++ {
		d := first.AddDays(i)
		cell := Cell{Date: d, Entries: make([]Entry, 0, len(workers))}
		for _, w := range workers {
			cell.Entries = append(cell.Entries, Entry{Worker: w, Assignment: a.Assign(w, d)})
		}
		view.Cells = append(view.Cells, cell)
	}

	for len(view.Cells) < GridCells {
		view.Cells = append(view.Cells, Cell{Empty: true})
	}

	return view
}
