// Package palette holds the display labels and colours for shift kinds.
//
// Labels and colours are data. They can be overridden from a YAML file
// without touching the assignment engine.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/shift-rota/internal/rota"
)

// Style is how one shift kind is shown.
type Style struct {
	Label      string `json:"label" yaml:"label"`
	Background string `json:"background" yaml:"background"` // #rrggbb
	Foreground string `json:"foreground" yaml:"foreground"` // #rrggbb
}

// Palette maps shift kinds to styles.
type Palette map[rota.ShiftKind]Style

// Default returns the built-in palette.
func Default() Palette {
	return Palette{
		rota.Morning: {Label: "Morning", Background: "#0369a1", Foreground: "#ffffff"},
		rota.Evening: {Label: "Evening", Background: "#b91c1c", Foreground: "#ffffff"},
		rota.Night:   {Label: "Night", Background: "#5f6f82", Foreground: "#ffffff"},
		rota.Off:     {Label: "Off", Background: "#faebd7", Foreground: "#000000"},
		rota.Rest:    {Label: "Rest", Background: "#faebd7", Foreground: "#000000"},
	}
}

// Load reads a YAML palette file and overlays it on the defaults. Fields
// left empty in the file keep their default value. An empty path returns
// the defaults.
//
// Example file:
//
//	night:
//	  label: Malam
//	  background: "#1e293b"
func Load(path string) (Palette, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette file: %w", err)
	}

	var overrides map[string]Style
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse palette file: %w", err)
	}

	if err := p.merge(overrides); err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

func (p Palette) merge(overrides map[string]Style) error {
	var errs []error
	for key, o := range overrides {
		kind := rota.ShiftKind(strings.ToLower(key))
		if !kind.IsValid() {
			errs = append(errs, fmt.Errorf("unknown shift kind %q", key))
			continue
		}

		s := p[kind]
		if o.Label != "" {
			s.Label = o.Label
		}
		if o.Background != "" {
			if _, err := ParseHex(o.Background); err != nil {
				errs = append(errs, fmt.Errorf("%s background: %w", key, err))
			}
			s.Background = o.Background
		}
		if o.Foreground != "" {
			if _, err := ParseHex(o.Foreground); err != nil {
				errs = append(errs, fmt.Errorf("%s foreground: %w", key, err))
			}
			s.Foreground = o.Foreground
		}
		p[kind] = s
	}
	return errors.Join(errs...)
}

// Label returns the display label for a kind, or the kind itself when the
// palette has no entry.
func (p Palette) Label(k rota.ShiftKind) string {
	if s, ok := p[k]; ok && s.Label != "" {
		return s.Label
	}
	return string(k)
}

// Style returns the style for a kind. Unknown kinds get a neutral style
// labelled with the kind itself.
func (p Palette) Style(k rota.ShiftKind) Style {
	if s, ok := p[k]; ok {
		return s
	}
	return Style{Label: string(k), Background: "#e5e7eb", Foreground: "#000000"}
}

// Colors returns the parsed background and foreground colours for a kind.
func (p Palette) Colors(k rota.ShiftKind) (bg, fg color.RGBA) {
	s := p.Style(k)
	bg, err := ParseHex(s.Background)
	if err != nil {
		bg = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	}
	fg, err = ParseHex(s.Foreground)
	if err != nil {
		fg = color.RGBA{0, 0, 0, 0xff}
	}
	return bg, fg
}

// ParseHex parses a "#rrggbb" or "#rgb" colour.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
