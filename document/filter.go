package document

import (
	"encoding/json"
	"fmt"
)

// FilterKind tags an entry of a FilterChain. A chain holds at most one
// entry per kind.
type FilterKind string

// Filter kinds.
const (
	FilterBlur   FilterKind = "blur"
	FilterAdjust FilterKind = "adjust"
)

// MatrixLen is the number of coefficients in a 4x5 color matrix.
const MatrixLen = 20

// Filter is one named adjustment in an element's render path.
//
// Blur uses Radius. Adjust keeps both its source parameters (Hue in degrees,
// Saturation and Brightness in percent) and the derived row-major 4x5
// Matrix, so it can be re-derived or edited later.
type Filter struct {
	Kind       FilterKind `json:"kind"`
	Radius     float64    `json:"radius,omitempty"`
	Hue        float64    `json:"hue,omitempty"`
	Saturation float64    `json:"saturation,omitempty"`
	Brightness float64    `json:"brightness,omitempty"`
	Matrix     []float64  `json:"matrix,omitempty"`
}

func (f Filter) clone() Filter {
	if f.Matrix != nil {
		f.Matrix = append([]float64(nil), f.Matrix...)
	}
	return f
}

func (f Filter) validate() error {
	if !finite(f.Radius, f.Hue, f.Saturation, f.Brightness) || !finite(f.Matrix...) {
		return fmt.Errorf("%s filter has a non-finite value", f.Kind)
	}
	switch f.Kind {
	case FilterBlur:
		if f.Radius < 0 {
			return fmt.Errorf("blur radius %g is negative", f.Radius)
		}
	case FilterAdjust:
		if len(f.Matrix) != MatrixLen {
			return fmt.Errorf("adjust matrix has %d coefficients, want %d", len(f.Matrix), MatrixLen)
		}
	default:
		return fmt.Errorf("unknown filter kind %q", f.Kind)
	}
	return nil
}

// FilterChain is an ordered map of filters keyed by kind. The zero value
// is an empty chain.
type FilterChain struct {
	entries []Filter
}

// NewFilterChain builds a chain from filters; a later filter replaces an
// earlier one of the same kind.
func NewFilterChain(filters ...Filter) FilterChain {
	var c FilterChain
	for _, f := range filters {
		c.Set(f)
	}
	return c
}

// Set replaces the entry with f's kind, keeping its position, or appends
// f when the kind is absent.
func (c *FilterChain) Set(f Filter) {
	f = f.clone()
	for i := range c.entries {
		if c.entries[i].Kind == f.Kind {
			c.entries[i] = f
			return
		}
	}
	c.entries = append(c.entries, f)
}

// Remove deletes the entry of the given kind and reports whether one existed.
func (c *FilterChain) Remove(kind FilterKind) bool {
	for i := range c.entries {
		if c.entries[i].Kind == kind {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the entry of the given kind.
func (c FilterChain) Get(kind FilterKind) (Filter, bool) {
	for _, f := range c.entries {
		if f.Kind == kind {
			return f.clone(), true
		}
	}
	return Filter{}, false
}

// Len returns the number of entries.
func (c FilterChain) Len() int { return len(c.entries) }

// All returns a copy of the entries in order.
func (c FilterChain) All() []Filter {
	out := make([]Filter, len(c.entries))
	for i, f := range c.entries {
		out[i] = f.clone()
	}
	return out
}

func (c FilterChain) clone() FilterChain {
	if len(c.entries) == 0 {
		return FilterChain{}
	}
	return FilterChain{entries: c.All()}
}

// MarshalJSON encodes the chain as an ordered array.
func (c FilterChain) MarshalJSON() ([]byte, error) {
	if c.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.entries)
}

// UnmarshalJSON decodes an ordered array, rejecting unknown kinds and
// duplicate tags.
func (c *FilterChain) UnmarshalJSON(data []byte) error {
	var entries []Filter
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	seen := make(map[FilterKind]bool, len(entries))
	for _, f := range entries {
		if err := f.validate(); err != nil {
			return err
		}
		if seen[f.Kind] {
			return fmt.Errorf("duplicate %q filter", f.Kind)
		}
		seen[f.Kind] = true
	}
	if len(entries) == 0 {
		entries = nil
	}
	c.entries = entries
	return nil
}

// SetFilter puts f into the filter chain of an image element, replacing
// an entry of the same kind in place. A stale id is a tolerated no-op.
func (s *Scene) SetFilter(id string, f Filter) (bool, error) {
	const op = "set filter"
	if err := f.validate(); err != nil {
		return false, invalid(op, "%v", err)
	}
	e := s.lookup(id)
	if e == nil {
		return false, nil
	}
	if e.Kind != KindImage {
		return false, invalid(op, "element %s is a %s, not an image", id, e.Kind)
	}
	e.Appearance.Filters.Set(f)
	s.emit(EventMutated, id)
	return true, nil
}

// RemoveFilter deletes the entry of the given kind from an element's
// filter chain. It reports whether an entry was removed.
func (s *Scene) RemoveFilter(id string, kind FilterKind) (bool, error) {
	e := s.lookup(id)
	if e == nil {
		return false, nil
	}
	if !e.Appearance.Filters.Remove(kind) {
		return false, nil
	}
	s.emit(EventMutated, id)
	return true, nil
}
