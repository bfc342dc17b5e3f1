package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/zapponejosh/shift-rota/internal/calendar"
	"github.com/zapponejosh/shift-rota/internal/palette"
)

const (
	cellWidth = 14
	nameWidth = 6
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Width(cellWidth * 7).MarginBottom(1)
	cellStyle  = lipgloss.NewStyle().Width(cellWidth).PaddingRight(1)
	dayStyle   = lipgloss.NewStyle().Bold(true)
	badgeStyle = lipgloss.NewStyle().Faint(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center).
			Width(cellWidth).
			Border(lipgloss.NormalBorder(), false, false, true, false)
)

// renderMonth draws a month view as a terminal grid, one row per week.
func renderMonth(view calendar.MonthView, pal palette.Palette) string {
	header := make([]string, len(calendar.DayNames))
	for i, name := range calendar.DayNames {
		header[i] = headerStyle.Render(name)
	}

	rows := []string{
		titleStyle.Render(view.Title()),
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}

	height := 1 + len(view.Workers)
	for week := 0; week < calendar.GridCells/7; week++ {
		cells := make([]string, 7)
		for day := range cells {
			cells[day] = renderCell(view.Cells[week*7+day], pal, height)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(cell calendar.Cell, pal palette.Palette, height int) string {
	style := cellStyle.Height(height)
	if cell.Empty {
		return style.Render("")
	}

	lines := []string{dayStyle.Render(strconv.Itoa(cell.Date.Day))}
	for _, e := range cell.Entries {
		s := pal.Style(e.Assignment.Shift)
		pill := lipgloss.NewStyle().
			Background(lipgloss.Color(s.Background)).
			Foreground(lipgloss.Color(s.Foreground)).
			Render(shortLabel(s.Label))
		lines = append(lines, fmt.Sprintf("%-*s %s %s",
			nameWidth, truncate(e.Worker, nameWidth), pill, badgeStyle.Render(e.Assignment.DayBadge())))
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// shortLabel keeps the first three letters of a label so a cell fits in
// the grid column.
func shortLabel(label string) string {
	return fmt.Sprintf("%-3s", truncate(label, 3))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
