package main

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/zapponejosh/shift-rota/internal/calendar"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	var (
		month   string
		workers string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a month of the rota as a grid",
		Example: `  rota show
  rota show --month 2026-03 --workers SITI,IRA`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := calendar.ClampMonth(civil.DateOf(time.Now()))
			if month != "" {
				parsed, err := calendar.ParseMonth(month)
				if err != nil {
					return err
				}
				if !calendar.InRange(parsed) {
					return fmt.Errorf("month %s is outside %s..%s", parsed, calendar.MinMonth, calendar.MaxMonth)
				}
				m = parsed
			}

			sel, err := parseSelection(opts, workers)
			if err != nil {
				return err
			}

			view := calendar.BuildMonth(opts.schedule, m, sel)
			fmt.Fprintln(cmd.OutOrStdout(), renderMonth(view, opts.palette))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&workers, "workers", "", "comma-separated workers (default: all)")
	return cmd
}
