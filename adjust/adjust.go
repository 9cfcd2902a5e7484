package adjust

import (
	"github.com/gogpu/studio/document"
)

// Params are the user-facing adjustment controls.
type Params struct {
	Hue        float64 // degrees, [-180, 180]
	Saturation float64 // percent, [-100, 100]
	Brightness float64 // percent, [-100, 100]
}

// IsZero reports whether p leaves colors unchanged.
func (p Params) IsZero() bool { return p == Params{} }

// Matrix derives the color matrix for p.
func (p Params) Matrix() Matrix {
	return BuildMatrix(p.Hue, p.Saturation, p.Brightness)
}

// Filter returns the filter-chain entry for p. The entry keeps both the
// parameters and the derived matrix.
func (p Params) Filter() document.Filter {
	return document.Filter{
		Kind:       document.FilterAdjust,
		Hue:        p.Hue,
		Saturation: p.Saturation,
		Brightness: p.Brightness,
		Matrix:     p.Matrix().Slice(),
	}
}

// FromFilter recovers the parameters of an adjust entry.
func FromFilter(f document.Filter) (Params, bool) {
	if f.Kind != document.FilterAdjust {
		return Params{}, false
	}
	return Params{Hue: f.Hue, Saturation: f.Saturation, Brightness: f.Brightness}, true
}

// ApplyChain replaces the adjust entry of chain with p, or removes it when
// p is nil. Other entries keep their positions.
func ApplyChain(chain *document.FilterChain, p *Params) {
	if p == nil {
		chain.Remove(document.FilterAdjust)
		return
	}
	chain.Set(p.Filter())
}

// Apply sets the adjustment of an image element in s, or removes it when
// p is nil. It reports whether the element's chain changed; a stale id is
// a tolerated no-op.
func Apply(s *document.Scene, id string, p *Params) (bool, error) {
	if p == nil {
		return s.RemoveFilter(id, document.FilterAdjust)
	}
	return s.SetFilter(id, p.Filter())
}

// Current returns the adjustment parameters of an element, if any.
func Current(s *document.Scene, id string) (Params, bool) {
	e, ok := s.Get(id)
	if !ok {
		return Params{}, false
	}
	f, ok := e.Appearance.Filters.Get(document.FilterAdjust)
	if !ok {
		return Params{}, false
	}
	return FromFilter(f)
}
