package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zapponejosh/shift-rota/internal/calendar"
)

var (
	// ErrNoMonths is returned when a batch names no months.
	ErrNoMonths = errors.New("no months selected")

	// ErrMonthOutOfRange is returned for months outside the displayed range.
	ErrMonthOutOfRange = errors.New("month out of range")
)

// Image is one rendered month.
type Image struct {
	Month    calendar.Month
	Workers  []string
	Filename string
	PNG      []byte
}

// Filename returns the download name for a month image, e.g.
// "03_2026_SITI-IRA.png". Workers are listed in the order given.
func Filename(m calendar.Month, workers []string) string {
	return fmt.Sprintf("%02d_%d_%s.png", int(m.Month), m.Year, strings.Join(workers, "-"))
}

// Observer is told about export progress. The metrics package implements it.
type Observer interface {
	ImageRendered(m calendar.Month, took time.Duration)
	BatchFinished(images int, err error)
}

type nopObserver struct{}

func (nopObserver) ImageRendered(calendar.Month, time.Duration) {}
func (nopObserver) BatchFinished(int, error)                   {}

// Exporter renders batches of month images.
type Exporter struct {
	assigner    calendar.Assigner
	renderer    *Renderer
	concurrency int
	logger      *slog.Logger
	observer    Observer
}

// Config holds exporter options.
type Config struct {
	Concurrency int // months rendered at once; values below 1 mean 1
	Logger      *slog.Logger
	Observer    Observer
}

// NewExporter creates an exporter.
func NewExporter(a calendar.Assigner, r *Renderer, cfg Config) *Exporter {
	e := &Exporter{
		assigner:    a,
		renderer:    r,
		concurrency: max(1, cfg.Concurrency),
		logger:      cfg.Logger,
		observer:    cfg.Observer,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	return e
}

// NormalizeMonths sorts months ascending and drops duplicates. Every month
// must be within the displayed range.
func NormalizeMonths(months []calendar.Month) ([]calendar.Month, error) {
	if len(months) == 0 {
		return nil, ErrNoMonths
	}
	out := slices.Clone(months)
	for _, m := range out {
		if !calendar.InRange(m) {
			return nil, fmt.Errorf("%w: %s", ErrMonthOutOfRange, m)
		}
	}
	slices.SortFunc(out, func(a, b calendar.Month) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	return slices.Compact(out), nil
}

// Month renders a single month.
func (e *Exporter) Month(m calendar.Month, sel calendar.Selection) (Image, error) {
	start := time.Now()
	view := calendar.BuildMonth(e.assigner, m, sel)

	data, err := e.renderer.EncodeBytes(view)
	if err != nil {
		return Image{}, fmt.Errorf("render %s: %w", m, err)
	}
	e.observer.ImageRendered(m, time.Since(start))

	return Image{
		Month:    m,
		Workers:  view.Workers,
		Filename: Filename(m, view.Workers),
		PNG:      data,
	}, nil
}

// Batch renders the given months for the selection, returned in ascending
// month order.
//
// ctx is checked before each month starts. If it is cancelled the batch
// stops, images already rendered are dropped, and ctx.Err() is returned.
func (e *Exporter) Batch(ctx context.Context, months []calendar.Month, sel calendar.Selection) ([]Image, error) {
	months, err := NormalizeMonths(months)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("export batch started",
		slog.Int("months", len(months)),
		slog.Any("workers", sel.Workers()),
		slog.Int("concurrency", e.concurrency),
	)

	images := make([]Image, len(months))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, m := range months {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := e.Month(m, sel)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}

	err = g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	if err != nil {
		e.observer.BatchFinished(0, err)
		if errors.Is(err, context.Canceled) {
			e.logger.Info("export batch cancelled", slog.Int("months", len(months)))
		}
		return nil, err
	}

	e.observer.BatchFinished(len(images), nil)
	return images, nil
}
