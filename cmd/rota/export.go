package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/shift-rota/internal/calendar"
	"github.com/zapponejosh/shift-rota/internal/export"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		months      string
		workers     string
		outDir      string
		width       int
		height      int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write month images as PNG files",
		Long: `Export renders the selected months as A4 landscape PNG images named
MM_2026_WORKER1-WORKER2.png. Press Ctrl-C to cancel; nothing is written
for a cancelled export.`,
		Example: `  rota export --months 1,2,3 --workers SITI,IRA --out ./out
  rota export --months all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ms, err := parseMonths(months)
			if err != nil {
				return err
			}
			sel, err := parseSelection(opts, workers)
			if err != nil {
				return err
			}

			renderer, err := export.NewRenderer(opts.palette, export.WithSize(width, height))
			if err != nil {
				return err
			}
			exporter := export.NewExporter(opts.schedule, renderer, export.Config{
				Concurrency: concurrency,
				Logger:      opts.logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			start := time.Now()
			images, err := exporter.Batch(ctx, ms, sel)
			if errors.Is(err, context.Canceled) {
				return errors.New("export cancelled")
			}
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, img := range images {
				path := filepath.Join(outDir, img.Filename)
				if err := os.WriteFile(path, img.PNG, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintln(out, path)
			}
			opts.logger.Info("export finished",
				"images", len(images),
				"took", time.Since(start).Round(time.Millisecond),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&months, "months", "all", `months to export: "all", or a list like 1,3,5-7`)
	cmd.Flags().StringVar(&workers, "workers", "", "comma-separated workers (default: all)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVar(&width, "width", export.DefaultWidth, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", export.DefaultHeight, "image height in pixels")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "months rendered at once")
	return cmd
}

// parseMonths parses "all" or a comma-separated list of month numbers and
// ranges of the displayed year.
func parseMonths(s string) ([]calendar.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, export.ErrNoMonths
	}

	var nums []int
	if strings.EqualFold(s, "all") {
		for n := 1; n <= 12; n++ {
			nums = append(nums, n)
		}
	} else {
		for _, part := range calendar.SplitNames(s) {
			lo, hi, isRange := strings.Cut(part, "-")
			first, err := strconv.Atoi(lo)
			if err != nil {
				return nil, fmt.Errorf("invalid month %q", part)
			}
			last := first
			if isRange {
				if last, err = strconv.Atoi(hi); err != nil || last < first {
					return nil, fmt.Errorf("invalid month range %q", part)
				}
			}
			for n := first; n <= last; n++ {
				nums = append(nums, n)
			}
		}
	}

	out := make([]calendar.Month, 0, len(nums))
	for _, n := range nums {
		if n < 1 || n > 12 {
			return nil, fmt.Errorf("%w: month %d", export.ErrMonthOutOfRange, n)
		}
		out = append(out, calendar.Month{Year: rota.DefaultYear, Month: time.Month(n)})
	}
	return export.NormalizeMonths(out)
}
