package document

import (
	"slices"

	"github.com/gogpu/studio/internal/logging"
)

// Group merges at least two distinct top-level elements into a new group
// element placed at their union bounding box. Children keep their relative
// paint order and are re-expressed relative to the group origin, so the
// rendered result does not change. The group takes the paint position of
// the top-most selected element.
func (s *Scene) Group(ids ...string) (string, error) {
	const op = "group"
	if len(ids) < 2 {
		return "", invalid(op, "need at least 2 elements, got %d", len(ids))
	}
	positions := make([]int, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return "", invalid(op, "duplicate id %q", id)
		}
		seen[id] = true
		i, ok := s.IndexOf(id)
		if !ok {
			return "", invalid(op, "no top-level element %q", id)
		}
		positions = append(positions, i)
	}
	slices.Sort(positions)

	bounds := EmptyRect()
	for _, i := range positions {
		bounds = bounds.Union(s.worldBounds(s.elements[i], Identity()))
	}

	g := &Element{
		ID:         s.freshID(),
		Kind:       KindGroup,
		Name:       "Group",
		Transform:  Transform{X: bounds.MinX, Y: bounds.MinY, ScaleX: 1, ScaleY: 1},
		Width:      bounds.Width(),
		Height:     bounds.Height(),
		Appearance: Appearance{Opacity: 1},
		Visible:    true,
		Children:   make([]*Element, 0, len(positions)),
	}
	for _, i := range positions {
		c := s.elements[i]
		c.Transform.X -= bounds.MinX
		c.Transform.Y -= bounds.MinY
		g.Children = append(g.Children, c)
	}

	top := positions[len(positions)-1]
	insertAt := top - (len(positions) - 1)
	rest := make([]*Element, 0, len(s.elements)-len(positions)+1)
	for _, e := range s.elements {
		if !seen[e.ID] {
			rest = append(rest, e)
		}
	}
	rest = slices.Insert(rest, insertAt, g)
	s.elements = rest
	s.markStale()

	logging.Logger().Debug("document: grouped", "group", g.ID, "children", len(g.Children))
	s.emit(EventGrouped, append([]string{g.ID}, ids...)...)
	return g.ID, nil
}

// Ungroup dissolves a group, re-expressing each child in the group's
// parent space and inserting the children where the group was, in their
// relative order. The group's own filters and shadow are discarded; its
// opacity and visibility are folded into the children.
func (s *Scene) Ungroup(id string) ([]string, error) {
	const op = "ungroup"
	s.reindex()
	loc, ok := s.index[id]
	if !ok {
		return nil, invalid(op, "no element %q", id)
	}
	list := s.container(loc.parent)
	g := list[loc.index]
	if g.Kind != KindGroup {
		return nil, invalid(op, "element %q is a %s, not a group", id, g.Kind)
	}

	ids := make([]string, len(g.Children))
	for i, c := range g.Children {
		c.Transform = g.Transform.compose(c.Transform)
		if g.Appearance.Opacity != 1 {
			c.Appearance.Opacity *= g.Appearance.Opacity
		}
		if !g.Visible {
			c.Visible = false
		}
		ids[i] = c.ID
	}

	out := make([]*Element, 0, len(list)-1+len(g.Children))
	out = append(out, list[:loc.index]...)
	out = append(out, g.Children...)
	out = append(out, list[loc.index+1:]...)
	s.setContainer(loc.parent, out)
	s.markStale()

	logging.Logger().Debug("document: ungrouped", "group", id, "children", len(ids))
	s.emit(EventUngrouped, ids...)
	return ids, nil
}
