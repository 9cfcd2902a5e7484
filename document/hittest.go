package document

// Bounds returns the world-space axis-aligned bounding box of an element.
func (s *Scene) Bounds(id string) (Rect, bool) {
	s.reindex()
	if _, ok := s.index[id]; !ok {
		return Rect{}, false
	}
	parent := Identity()
	chain := s.ancestors(id)
	for i := len(chain) - 1; i >= 0; i-- {
		parent = parent.Multiply(chain[i].Transform.Matrix())
	}
	return s.worldBounds(s.lookup(id), parent), true
}

// ContentBounds returns the union of the world bounds of all elements.
func (s *Scene) ContentBounds() Rect {
	r := EmptyRect()
	for _, e := range s.elements {
		r = r.Union(s.worldBounds(e, Identity()))
	}
	return r
}

// WorldMatrix returns the matrix mapping an element's local box to
// document space.
func (s *Scene) WorldMatrix(id string) (Matrix, bool) {
	e := s.lookup(id)
	if e == nil {
		return Identity(), false
	}
	m := e.Transform.Matrix()
	for _, a := range s.ancestors(id) {
		m = a.Transform.Matrix().Multiply(m)
	}
	return m, true
}

// ancestors returns the groups containing id, innermost first.
func (s *Scene) ancestors(id string) []*Element {
	var out []*Element
	loc := s.index[id]
	for loc.parent != nil {
		out = append(out, loc.parent)
		loc = s.index[loc.parent.ID]
	}
	return out
}

func (s *Scene) worldBounds(e *Element, parent Matrix) Rect {
	return e.LocalBounds().Transform(parent.Multiply(e.Transform.Matrix()))
}

// HitTest returns the id of the top-most visible, unlocked top-level
// element under the document point (x, y). Groups hit as a unit when any
// of their visible children contains the point.
func (s *Scene) HitTest(x, y float64) (string, bool) {
	for i := len(s.elements) - 1; i >= 0; i-- {
		e := s.elements[i]
		if !e.Visible || e.Locked {
			continue
		}
		if hits(e, Identity(), x, y) {
			return e.ID, true
		}
	}
	return "", false
}

func hits(e *Element, parent Matrix, x, y float64) bool {
	if !e.Visible {
		return false
	}
	m := parent.Multiply(e.Transform.Matrix())
	if e.Kind == KindGroup {
		for i := len(e.Children) - 1; i >= 0; i-- {
			if hits(e.Children[i], m, x, y) {
				return true
			}
		}
		return false
	}
	inv, ok := m.Invert()
	if !ok {
		return false
	}
	lx, ly := inv.TransformPoint(x, y)
	return NewRect(0, 0, e.Width, e.Height).Contains(lx, ly)
}
