package calendar

import (
	"slices"
	"strings"
)

// Selection is an immutable set of workers chosen for display or export.
// Operations return a new Selection and never modify the receiver.
//
// An empty selection means the whole roster.
type Selection struct {
	roster []string
	chosen map[string]bool
}

// NewSelection returns a selection of the given names. Names not on the
// roster are ignored.
func NewSelection(roster []string, names ...string) Selection {
	s := Selection{
		roster: slices.Clone(roster),
		chosen: make(map[string]bool, len(names)),
	}
	for _, n := range names {
		if slices.Contains(roster, n) {
			s.chosen[n] = true
		}
	}
	return s
}

// AllOf returns a selection of the whole roster.
func AllOf(roster []string) Selection {
	return NewSelection(roster, roster...)
}

func (s Selection) with(fn func(chosen map[string]bool)) Selection {
	next := Selection{roster: s.roster, chosen: make(map[string]bool, len(s.roster))}
	for n := range s.chosen {
		next.chosen[n] = true
	}
	fn(next.chosen)
	return next
}

// Toggle adds the worker if absent and removes it if present.
func (s Selection) Toggle(name string) Selection {
	if !slices.Contains(s.roster, name) {
		return s
	}
	return s.with(func(c map[string]bool) {
		if c[name] {
			delete(c, name)
		} else {
			c[name] = true
		}
	})
}

// ToggleAll clears a full selection, and fills any other.
func (s Selection) ToggleAll() Selection {
	if s.IsAll() {
		return s.with(func(c map[string]bool) { clear(c) })
	}
	return s.with(func(c map[string]bool) {
		for _, n := range s.roster {
			c[n] = true
		}
	})
}

// Has reports whether the worker is explicitly selected.
func (s Selection) Has(name string) bool {
	return s.chosen[name]
}

// IsAll reports whether every roster worker is selected.
func (s Selection) IsAll() bool {
	return len(s.roster) > 0 && len(s.chosen) == len(s.roster)
}

// IsEmpty reports whether nothing is explicitly selected.
func (s Selection) IsEmpty() bool {
	return len(s.chosen) == 0
}

// Workers returns the workers to show, in roster order. An empty selection
// shows the whole roster.
func (s Selection) Workers() []string {
	if s.IsEmpty() {
		return slices.Clone(s.roster)
	}
	out := make([]string, 0, len(s.chosen))
	for _, n := range s.roster {
		if s.chosen[n] {
			out = append(out, n)
		}
	}
	return out
}

// SplitNames splits a comma-separated list, trimming blanks.
func SplitNames(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
