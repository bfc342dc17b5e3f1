package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zapponejosh/shift-rota/internal/calendar"
	"github.com/zapponejosh/shift-rota/internal/palette"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// A4 at 100 DPI keeps the tests quick.
const testWidth, testHeight = 1169, 827

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(palette.Default(), WithSize(testWidth, testHeight))
	require.NoError(t, err)
	return r
}

type recordingObserver struct {
	mu       sync.Mutex
	rendered []calendar.Month
	batches  int
	lastErr  error
}

func (o *recordingObserver) ImageRendered(m calendar.Month, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rendered = append(o.rendered, m)
}

func (o *recordingObserver) BatchFinished(_ int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches++
	o.lastErr = err
}

func hasColor(img *image.RGBA, want color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == want {
				return true
			}
		}
	}
	return false
}

func TestFilename(t *testing.T) {
	m := calendar.Month{Year: 2026, Month: time.March}
	require.Equal(t, "03_2026_SITI-IRA.png", Filename(m, []string{"SITI", "IRA"}))
	require.Equal(t, "12_2026_BALQIS.png", Filename(calendar.Month{Year: 2026, Month: time.December}, []string{"BALQIS"}))
}

func TestNewRenderer_TooSmall(t *testing.T) {
	_, err := NewRenderer(palette.Default(), WithSize(10, 10))
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	r := newTestRenderer(t)
	s := rota.Default2026()
	view := calendar.BuildMonth(s, calendar.Month{Year: 2026, Month: time.February}, calendar.NewSelection(s.Roster()))

	img, err := r.Render(view)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, testWidth, testHeight), img.Bounds())

	// Every shift kind occurs in a four-worker month, so every pill colour
	// must appear somewhere.
	p := palette.Default()
	for _, k := range rota.ValidShiftKinds() {
		bg, _ := p.Colors(k)
		require.True(t, hasColor(img, bg), "no %s pill drawn", k)
	}

	// February 2026 fills exactly four rows; the last cell stays blank.
	require.Equal(t, white, img.RGBAAt(testWidth-2, testHeight-2))
}

func TestEncodeBytes_DecodesAsPNG(t *testing.T) {
	r := newTestRenderer(t)
	s := rota.Default2026()
	view := calendar.BuildMonth(s, calendar.Month{Year: 2026, Month: time.August}, calendar.NewSelection(s.Roster(), "IRA"))

	data, err := r.EncodeBytes(view)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, testWidth, img.Bounds().Dx())
	require.Equal(t, testHeight, img.Bounds().Dy())
}

func TestNormalizeMonths(t *testing.T) {
	jan := calendar.Month{Year: 2026, Month: time.January}
	mar := calendar.Month{Year: 2026, Month: time.March}

	got, err := NormalizeMonths([]calendar.Month{mar, jan, mar})
	require.NoError(t, err)
	require.Equal(t, []calendar.Month{jan, mar}, got)

	_, err = NormalizeMonths(nil)
	require.ErrorIs(t, err, ErrNoMonths)

	_, err = NormalizeMonths([]calendar.Month{{Year: 2027, Month: time.January}})
	require.ErrorIs(t, err, ErrMonthOutOfRange)
}

func TestBatch(t *testing.T) {
	s := rota.Default2026()
	obs := &recordingObserver{}
	e := NewExporter(s, newTestRenderer(t), Config{Concurrency: 3, Observer: obs})

	months := []calendar.Month{
		{Year: 2026, Month: time.May},
		{Year: 2026, Month: time.January},
		{Year: 2026, Month: time.March},
		{Year: 2026, Month: time.January},
	}
	sel := calendar.NewSelection(s.Roster(), "BALQIS", "SITI")

	images, err := e.Batch(context.Background(), months, sel)
	require.NoError(t, err)
	require.Len(t, images, 3)

	wantNames := []string{"01_2026_SITI-BALQIS.png", "03_2026_SITI-BALQIS.png", "05_2026_SITI-BALQIS.png"}
	for i, img := range images {
		require.Equal(t, wantNames[i], img.Filename)
		require.Equal(t, []string{"SITI", "BALQIS"}, img.Workers)
		require.NotEmpty(t, img.PNG)
	}

	require.Len(t, obs.rendered, 3)
	require.Equal(t, 1, obs.batches)
	require.NoError(t, obs.lastErr)
}

func TestBatch_EmptySelectionUsesRoster(t *testing.T) {
	s := rota.Default2026()
	e := NewExporter(s, newTestRenderer(t), Config{})

	images, err := e.Batch(context.Background(), []calendar.Month{{Year: 2026, Month: time.June}}, calendar.NewSelection(s.Roster()))
	require.NoError(t, err)
	require.Equal(t, "06_2026_SITI-IRA-EKIN-BALQIS.png", images[0].Filename)
}

func TestBatch_Cancelled(t *testing.T) {
	s := rota.Default2026()
	obs := &recordingObserver{}
	e := NewExporter(s, newTestRenderer(t), Config{Observer: obs})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	images, err := e.Batch(ctx, []calendar.Month{calendar.MinMonth, calendar.MaxMonth}, calendar.NewSelection(s.Roster()))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, images)
	require.Empty(t, obs.rendered)
	require.ErrorIs(t, obs.lastErr, context.Canceled)
}

func TestBatch_InvalidMonths(t *testing.T) {
	s := rota.Default2026()
	e := NewExporter(s, newTestRenderer(t), Config{})

	_, err := e.Batch(context.Background(), nil, calendar.NewSelection(s.Roster()))
	require.ErrorIs(t, err, ErrNoMonths)
}
