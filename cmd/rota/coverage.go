package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/shift-rota/internal/calendar"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

// mismatch is one day where the server disagrees with the local engine.
type mismatch struct {
	Worker string          `json:"worker"`
	Date   string          `json:"date"`
	Got    rota.Assignment `json:"got"`
	Want   rota.Assignment `json:"want"`
}

// workerStats counts checked days per worker.
type workerStats struct {
	Worker     string                 `json:"worker"`
	Days       int                    `json:"days"`
	Mismatches int                    `json:"mismatches"`
	ByShift    map[rota.ShiftKind]int `json:"by_shift"`
}

// coverageReport is the result of checking the whole displayed year.
type coverageReport struct {
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Workers    []*workerStats `json:"workers"`
	Mismatches []mismatch     `json:"mismatches"`
}

func newCoverageCmd(opts *rootOptions) *cobra.Command {
	var (
		baseURL    string
		outputFile string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Check every 2026 day served by the API against the local engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api := newAPIClient(baseURL, "", 30*time.Second)
			if err := api.get("/health", nil); err != nil {
				return fmt.Errorf("cannot connect to %s, make sure the API server is running: %w", baseURL, err)
			}

			report, err := checkCoverage(api, opts.schedule)
			if err != nil {
				return err
			}
			printCoverage(cmd.OutOrStdout(), report, verbose)

			if outputFile != "" {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(outputFile, data, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}

			if len(report.Mismatches) > 0 {
				return fmt.Errorf("%d day(s) differ from the local engine", len(report.Mismatches))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "base URL of the API")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the report as JSON to this file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every mismatch")
	return cmd
}

// checkCoverage fetches each worker's assignments for the displayed year
// and compares them day by day with s.
func checkCoverage(api *apiClient, s *rota.Schedule) (*coverageReport, error) {
	start := calendar.MinMonth.First()
	end := calendar.MaxMonth.First().AddDays(calendar.MaxMonth.Days() - 1)
	report := &coverageReport{Start: start.String(), End: end.String()}

	for _, worker := range s.Roster() {
		q := url.Values{"start": {start.String()}, "end": {end.String()}}
		var data struct {
			Assignments []dayEntry `json:"assignments"`
		}
		if err := api.get(fmt.Sprintf("/api/v1/workers/%s/assignments?%s", url.PathEscape(worker), q.Encode()), &data); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", worker, err)
		}

		stats := &workerStats{Worker: worker, ByShift: make(map[rota.ShiftKind]int)}
		report.Workers = append(report.Workers, stats)

		for _, e := range data.Assignments {
			d, err := calendar.ParseDate(e.Date)
			if err != nil {
				return nil, err
			}
			got := rota.Assignment{CyclePosition: e.CyclePosition, Shift: e.Shift}
			want := s.Assign(worker, d)

			stats.Days++
			stats.ByShift[got.Shift]++
			if got != want {
				stats.Mismatches++
				report.Mismatches = append(report.Mismatches, mismatch{Worker: worker, Date: e.Date, Got: got, Want: want})
			}
		}

		if expected := end.DaysSince(start) + 1; stats.Days != expected {
			return nil, fmt.Errorf("%s: got %d days, want %d", worker, stats.Days, expected)
		}
	}
	return report, nil
}

func printCoverage(w io.Writer, r *coverageReport, verbose bool) {
	fmt.Fprintf(w, "Date range: %s to %s\n\n", r.Start, r.End)
	for _, s := range r.Workers {
		fmt.Fprintf(w, "  %-7s %3d days, %3d mismatches  (", s.Worker, s.Days, s.Mismatches)
		for i, k := range rota.ValidShiftKinds() {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%s %d", k, s.ByShift[k])
		}
		fmt.Fprintln(w, ")")
	}

	if verbose {
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "  ✗ %s %s: got %s/%d, want %s/%d\n",
				m.Worker, m.Date, m.Got.Shift, m.Got.CyclePosition, m.Want.Shift, m.Want.CyclePosition)
		}
	}
}
