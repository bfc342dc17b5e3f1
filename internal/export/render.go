// Package export renders month views as printable PNG images.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/zapponejosh/shift-rota/internal/calendar"
	"github.com/zapponejosh/shift-rota/internal/palette"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

// A4 landscape at 300 DPI.
const (
	DefaultWidth  = 3508
	DefaultHeight = 2480
)

// baseWidth is the layout width all sizes below are expressed against.
// Drawing at DefaultWidth scales them by 3.8.
const baseWidth = 923.0

// Layout sizes in base units.
const (
	titleSize  = 16
	headerSize = 13
	dateSize   = 12
	nameSize   = 12
	pillSize   = 11
	badgeSize  = 11
	gapUnits   = 6
	lineUnits  = 2
	radiusUnit = 6
)

var (
	black = color.RGBA{0, 0, 0, 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Renderer draws month views. It is safe for concurrent use: font faces
// are created per call.
type Renderer struct {
	palette palette.Palette
	width   int
	height  int
	bold    *opentype.Font
	regular *opentype.Font
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the output size in pixels.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		r.width = width
		r.height = height
	}
}

// NewRenderer creates a renderer using the given palette.
func NewRenderer(p palette.Palette, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		palette: p,
		width:   DefaultWidth,
		height:  DefaultHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.width < 300 || r.height < 200 {
		return nil, fmt.Errorf("image size %dx%d too small", r.width, r.height)
	}

	var err error
	if r.bold, err = opentype.Parse(gobold.TTF); err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	if r.regular, err = opentype.Parse(goregular.TTF); err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	return r, nil
}

// Size returns the output size in pixels.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// faces holds the font faces for one render.
type faces struct {
	title, header, date, name, pill, badge font.Face
}

func (f *faces) close() {
	for _, face := range []font.Face{f.title, f.header, f.date, f.name, f.pill, f.badge} {
		if face != nil {
			face.Close()
		}
	}
}

func (r *Renderer) newFaces(scale float64) (*faces, error) {
	newFace := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size * scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	fs := &faces{}
	var err error
	steps := []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&fs.title, r.bold, titleSize},
		{&fs.header, r.bold, headerSize},
		{&fs.date, r.bold, dateSize},
		{&fs.name, r.bold, nameSize},
		{&fs.pill, r.bold, pillSize},
		{&fs.badge, r.regular, badgeSize},
	}
	for _, s := range steps {
		if *s.dst, err = newFace(s.font, s.size); err != nil {
			fs.close()
			return nil, fmt.Errorf("create font face: %w", err)
		}
	}
	return fs, nil
}

// Render draws the view onto a new image.
func (r *Renderer) Render(view calendar.MonthView) (*image.RGBA, error) {
	scale := float64(r.width) / baseWidth
	px := func(units float64) int {
		return max(1, int(math.Round(units*scale)))
	}

	fs, err := r.newFaces(scale)
	if err != nil {
		return nil, err
	}
	defer fs.close()

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	lineCol, _ := r.palette.Colors(rota.Night)
	gap := px(gapUnits)
	margin := gap

	// Title.
	y := margin
	drawCentered(img, fs.title, black, view.Title(), r.width/2, y+ascent(fs.title))
	y += height(fs.title) + gap

	// Weekday header with an underline.
	colW := (r.width - 2*margin - 6*gap) / 7
	headerH := height(fs.header) + px(lineUnits)
	for i, name := range calendar.DayNames {
		x := margin + i*(colW+gap)
		drawCentered(img, fs.header, black, name, x+colW/2, y+ascent(fs.header))
		fill(img, image.Rect(x, y+headerH-px(lineUnits), x+colW, y+headerH), lineCol)
	}
	y += headerH + gap

	rows := calendar.GridCells / 7
	rowH := (r.height - margin - y - (rows-1)*gap) / rows
	for i, cell := range view.Cells {
		if cell.Empty {
			continue
		}
		row, col := i/7, i%7
		x0 := margin + col*(colW+gap)
		y0 := y + row*(rowH+gap)
		r.drawDay(img, fs, image.Rect(x0, y0, x0+colW, y0+rowH), cell, lineCol, px)
	}

	return img, nil
}

func (r *Renderer) drawDay(img *image.RGBA, fs *faces, rect image.Rectangle, cell calendar.Cell, lineCol color.RGBA, px func(float64) int) {
	drawCentered(img, fs.date, black, fmt.Sprint(cell.Date.Day), (rect.Min.X+rect.Max.X)/2, rect.Min.Y+ascent(fs.date))

	box := rect
	box.Min.Y += height(fs.date) + px(lineUnits)
	if box.Empty() {
		return
	}

	border := px(lineUnits)
	radius := px(radiusUnit)
	fillRounded(img, box, radius, lineCol)
	inner := box.Inset(border)
	fillRounded(img, inner, radius-border, white)

	// Entries are clipped to the inside of the box.
	clip, ok := img.SubImage(inner).(*image.RGBA)
	if !ok {
		return
	}

	pad := px(gapUnits)
	pillPad := px(3)
	lineH := height(fs.name)

	// Lines tighten up when a full roster would not fit at normal spacing.
	step := lineH + pad
	if n := len(cell.Entries); n > 0 {
		step = max(lineH, min(step, (inner.Dy()-pad)/n))
	}

	lineY := inner.Min.Y + pad
	for _, e := range cell.Entries {
		if lineY+lineH > inner.Max.Y {
			break
		}
		base := lineY + ascent(fs.name)
		x := inner.Min.X + pad

		x = drawText(clip, fs.name, black, e.Worker, x, base) + pad

		bg, fg := r.palette.Colors(e.Assignment.Shift)
		label := r.palette.Label(e.Assignment.Shift)
		labelW := font.MeasureString(fs.pill, label).Ceil()
		pill := image.Rect(x, lineY, x+labelW+2*pillPad, lineY+lineH)
		fillRounded(clip, pill, px(2), bg)
		drawText(clip, fs.pill, fg, label, x+pillPad, base)
		x = pill.Max.X + pad

		if badge := e.Assignment.DayBadge(); badge != "" {
			drawText(clip, fs.badge, black, badge, x, base)
		}

		lineY += step
	}
}

// Encode renders the view and writes it as PNG.
func (r *Renderer) Encode(w io.Writer, view calendar.MonthView) error {
	img, err := r.Render(view)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a byte slice.
func (r *Renderer) EncodeBytes(view calendar.MonthView) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Drawing helpers
// =============================================================================

func height(f font.Face) int { return f.Metrics().Height.Ceil() }
func ascent(f font.Face) int { return f.Metrics().Ascent.Ceil() }

// drawText draws s with its baseline at y and returns the x after it.
func drawText(dst draw.Image, f font.Face, c color.Color, s string, x, y int) int {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
	return d.Dot.X.Ceil()
}

func drawCentered(dst draw.Image, f font.Face, c color.Color, s string, cx, y int) {
	w := font.MeasureString(f, s).Ceil()
	drawText(dst, f, c, s, cx-w/2, y)
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// fillRounded fills r with rounded corners of the given radius, one pixel
// row at a time.
func fillRounded(dst draw.Image, r image.Rectangle, radius int, c color.Color) {
	radius = min(radius, r.Dx()/2, r.Dy()/2)
	if radius <= 0 {
		fill(dst, r, c)
		return
	}
	src := image.NewUniform(c)
	rad := float64(radius)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		var dy float64
		switch {
		case y < r.Min.Y+radius:
			dy = float64(r.Min.Y+radius-y) - 0.5
		case y >= r.Max.Y-radius:
			dy = float64(y-(r.Max.Y-radius)) + 0.5
		}
		inset := 0
		if dy > 0 {
			inset = radius - int(math.Round(math.Sqrt(rad*rad-dy*dy)))
		}
		draw.Draw(dst, image.Rect(r.Min.X+inset, y, r.Max.X-inset, y+1), src, image.Point{}, draw.Src)
	}
}
