package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// SnapshotVersion is the current structured-snapshot format version.
const SnapshotVersion = 1

// snapshot is the wire form of a Scene.
type snapshot struct {
	Version    int        `json:"version"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Background string     `json:"background,omitempty"`
	Elements   []*Element `json:"elements"`
}

// Serialize encodes the scene's elements, canvas size and background as a
// structured snapshot. Deserialize reconstructs an indistinguishable scene.
func (s *Scene) Serialize() ([]byte, error) {
	snap := snapshot{
		Version:    SnapshotVersion,
		Width:      s.width,
		Height:     s.height,
		Background: s.background,
		Elements:   s.elements,
	}
	if snap.Elements == nil {
		snap.Elements = []*Element{}
	}
	data, err := json.Marshal(&snap)
	if err != nil {
		return nil, &SerializationError{Op: "serialize", Err: err}
	}
	return data, nil
}

// Deserialize decodes a snapshot into a new Scene. Duplicate ids inside
// the snapshot are rejected.
func Deserialize(data []byte, opts ...Option) (*Scene, error) {
	snap, err := decodeSnapshot("deserialize", data)
	if err != nil {
		return nil, err
	}
	s := New(snap.Width, snap.Height, opts...)
	s.background = snap.Background
	s.elements = snap.Elements
	s.markStale()
	return s, nil
}

// Restore replaces the scene contents with a snapshot. On error the scene
// is left untouched.
func (s *Scene) Restore(data []byte) error {
	snap, err := decodeSnapshot("restore", data)
	if err != nil {
		return err
	}
	s.width, s.height = snap.Width, snap.Height
	s.background = snap.Background
	s.elements = snap.Elements
	s.markStale()
	s.emit(EventRestored)
	return nil
}

// Import appends the elements of a snapshot on top of the current paint
// order, for paste and template insertion. Ids that collide with elements
// already in the scene are re-issued; the canvas size and background of
// the snapshot are ignored. It returns the top-level ids added.
func (s *Scene) Import(data []byte) ([]string, error) {
	snap, err := decodeSnapshot("import", data)
	if err != nil {
		return nil, err
	}
	s.reindex()
	for _, e := range snap.Elements {
		e.Walk(func(el *Element) bool {
			if _, taken := s.index[el.ID]; taken {
				el.ID = s.freshID()
			}
			s.index[el.ID] = location{}
			return true
		})
	}
	ids := make([]string, len(snap.Elements))
	for i, e := range snap.Elements {
		ids[i] = e.ID
	}
	s.elements = append(s.elements, snap.Elements...)
	s.markStale()
	s.emit(EventAdded, ids...)
	return ids, nil
}

func decodeSnapshot(op string, data []byte) (*snapshot, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &SerializationError{Op: op, Err: err}
	}
	if snap.Version != SnapshotVersion {
		return nil, &SerializationError{Op: op, Err: fmt.Errorf("unsupported snapshot version %d", snap.Version)}
	}
	if !(snap.Width > 0 && snap.Height > 0) || math.IsInf(snap.Width, 0) || math.IsInf(snap.Height, 0) {
		return nil, &SerializationError{Op: op, Err: fmt.Errorf("bad canvas size %gx%g", snap.Width, snap.Height)}
	}
	if !ValidColor(snap.Background) {
		return nil, &SerializationError{Op: op, Err: fmt.Errorf("bad background %q", snap.Background)}
	}
	seen := make(map[string]bool)
	for _, e := range snap.Elements {
		if err := checkElement(e, seen); err != nil {
			return nil, &SerializationError{Op: op, Err: err}
		}
	}
	if snap.Elements == nil {
		snap.Elements = []*Element{}
	}
	return &snap, nil
}

func checkElement(e *Element, seen map[string]bool) error {
	if e == nil {
		return errors.New("null element")
	}
	if e.ID == "" {
		return errors.New("element without id")
	}
	if seen[e.ID] {
		return fmt.Errorf("duplicate element id %q", e.ID)
	}
	seen[e.ID] = true
	if !e.Kind.Valid() {
		return fmt.Errorf("element %s: unknown kind %q", e.ID, e.Kind)
	}
	if !e.Transform.finite() {
		return fmt.Errorf("element %s: non-finite transform", e.ID)
	}
	if err := validateAppearance("decode", e.Appearance); err != nil {
		return fmt.Errorf("element %s: %w", e.ID, err)
	}
	switch e.Kind {
	case KindShape:
		if !e.Shape.valid() {
			return fmt.Errorf("element %s: unknown shape %q", e.ID, e.Shape)
		}
	case KindText:
		if e.Text == nil {
			return fmt.Errorf("element %s: text element without content", e.ID)
		}
	case KindImage:
		if e.Image == nil || e.Image.Ref == "" {
			return fmt.Errorf("element %s: image element without source", e.ID)
		}
	}
	if e.Kind != KindGroup && len(e.Children) > 0 {
		return fmt.Errorf("element %s: only groups have children", e.ID)
	}
	for _, c := range e.Children {
		if err := checkElement(c, seen); err != nil {
			return err
		}
	}
	return nil
}
