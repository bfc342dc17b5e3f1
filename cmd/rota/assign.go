package main

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zapponejosh/shift-rota/internal/calendar"
)

func newAssignCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "assign WORKER [DATE]",
		Short: "Print a worker's shift on a date",
		Example: `  rota assign SITI 2026-03-01
  rota assign IRA --days 8`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			worker := strings.ToUpper(args[0])
			if !opts.schedule.HasWorker(worker) {
				return fmt.Errorf("unknown worker %q, roster is %s", args[0], strings.Join(opts.schedule.Roster(), ", "))
			}
			if days < 1 || days > 366 {
				return fmt.Errorf("--days must be between 1 and 366, got %d", days)
			}

			start := civil.DateOf(time.Now())
			if len(args) == 2 {
				d, err := calendar.ParseDate(args[1])
				if err != nil {
					return err
				}
				start = d
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				BorderTop(false).
				BorderBottom(false).
				BorderLeft(false).
				BorderRight(false).
				BorderHeader(false).
				Headers("DATE", "DAY", "WORKER", "SHIFT", "BADGE")
			for d := start; d.DaysSince(start) < days; d = d.AddDays(1) {
				a := opts.schedule.Assign(worker, d)
				t.Row(d.String(), calendar.Weekday(d).String()[:3], worker, opts.palette.Label(a.Shift), a.DayBadge())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}

	cmd.Flags().IntVar(&days, "days", 1, "number of consecutive days to print")
	return cmd
}

// parseSelection turns a comma-separated worker list into a selection,
// rejecting names that are not on the roster.
func parseSelection(opts *rootOptions, csv string) (calendar.Selection, error) {
	names := calendar.SplitNames(csv)
	for i, n := range names {
		names[i] = strings.ToUpper(n)
		if !opts.schedule.HasWorker(names[i]) {
			return calendar.Selection{}, fmt.Errorf("unknown worker %q, roster is %s", n, strings.Join(opts.schedule.Roster(), ", "))
		}
	}
	return calendar.NewSelection(opts.schedule.Roster(), names...), nil
}
