package document

import (
	"math"

	"github.com/gogpu/studio/internal/logging"
)

// location records where an element lives: in the top-level list when
// parent is nil, otherwise in parent.Children.
type location struct {
	parent *Element
	index  int
}

// Scene is the document: an ordered list of top-level elements plus the
// canvas size and background.
//
// List order is paint order; the first element is bottom-most. An id index
// covering the whole tree is rebuilt lazily after structural changes.
//
// A Scene is not safe for concurrent use. Clone it before handing it to
// another goroutine.
type Scene struct {
	width      float64
	height     float64
	background string

	elements []*Element
	index    map[string]location
	stale    bool

	newID        IDGenerator
	version      uint64
	observers    map[int]func(Event)
	nextObserver int
}

// Option configures a Scene.
type Option func(*Scene)

// WithBackground sets the canvas background color.
func WithBackground(color string) Option {
	return func(s *Scene) {
		s.background = color
	}
}

// WithIDGenerator replaces the default UUIDv7 id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Scene) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New creates an empty scene with the given canvas size.
//
//	s := document.New(800, 600, document.WithBackground("#ffffff"))
//	id, _ := s.AddElement(document.Spec{Kind: document.KindShape, Width: 100, Height: 50})
func New(width, height float64, opts ...Option) *Scene {
	s := &Scene{
		width:  width,
		height: height,
		index:  make(map[string]location),
		newID:  UUIDv7(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the canvas size in document units.
func (s *Scene) Size() (width, height float64) { return s.width, s.height }

// Background returns the canvas background color.
func (s *Scene) Background() string { return s.background }

// Version increments on every committed change. Callers use it to detect
// a dirty document without subscribing.
func (s *Scene) Version() uint64 { return s.version }

// Len returns the number of top-level elements.
func (s *Scene) Len() int { return len(s.elements) }

// Count returns the number of elements in the whole tree.
func (s *Scene) Count() int {
	s.reindex()
	return len(s.index)
}

// SetBackground changes the canvas background color.
func (s *Scene) SetBackground(color string) error {
	if !ValidColor(color) {
		return invalid("background", "bad color %q", color)
	}
	if color == s.background {
		return nil
	}
	s.background = color
	s.emit(EventMutated)
	return nil
}

// AddElement validates spec, assigns a fresh id and appends the element at
// the top of the paint order.
func (s *Scene) AddElement(spec Spec) (string, error) {
	e, err := spec.build()
	if err != nil {
		return "", err
	}
	e.ID = s.freshID()
	s.elements = append(s.elements, e)
	s.markStale()
	logging.Logger().Debug("document: element added", "id", e.ID, "kind", e.Kind)
	s.emit(EventAdded, e.ID)
	return e.ID, nil
}

// RemoveElements removes every element matching ids wherever it occurs.
// Removing a group removes its subtree; emptying a group does not remove
// the group. It returns the ids actually removed; stale ids are ignored.
func (s *Scene) RemoveElements(ids ...string) []string {
	s.reindex()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			drop[id] = true
		}
	}
	if len(drop) == 0 {
		return nil
	}
	var removed []string
	s.elements = filterTree(s.elements, drop, &removed)
	s.markStale()
	s.emit(EventRemoved, removed...)
	return removed
}

func filterTree(list []*Element, drop map[string]bool, removed *[]string) []*Element {
	out := list[:0]
	for _, e := range list {
		if drop[e.ID] {
			*removed = append(*removed, e.ID)
			continue
		}
		if len(e.Children) > 0 {
			e.Children = filterTree(e.Children, drop, removed)
		}
		out = append(out, e)
	}
	for i := len(out); i < len(list); i++ {
		list[i] = nil
	}
	return out
}

// Mutate applies p to the element with the given id. It reports whether
// the element was found; a stale id is a tolerated no-op. An invalid patch
// returns a *ValidationError and changes nothing.
func (s *Scene) Mutate(id string, p Patch) (bool, error) {
	e := s.lookup(id)
	if e == nil {
		logging.Logger().Warn("document: mutate on stale id", "id", id)
		return false, nil
	}
	if err := p.validate(e); err != nil {
		return false, err
	}
	if p.IsEmpty() {
		return true, nil
	}
	p.apply(e)
	s.emit(EventMutated, id)
	return true, nil
}

// ReplaceImageSource swaps the pixels of an image element while keeping
// its id, name and transform. Natural sizes of zero are left unchanged.
func (s *Scene) ReplaceImageSource(id, ref string, naturalWidth, naturalHeight int) (bool, error) {
	const op = "replace image source"
	if ref == "" {
		return false, invalid(op, "empty source")
	}
	e := s.lookup(id)
	if e == nil {
		return false, nil
	}
	if e.Kind != KindImage {
		return false, invalid(op, "element %s is a %s, not an image", id, e.Kind)
	}
	e.Image.Ref = ref
	if naturalWidth > 0 {
		e.Image.NaturalWidth = naturalWidth
	}
	if naturalHeight > 0 {
		e.Image.NaturalHeight = naturalHeight
	}
	s.emit(EventMutated, id)
	return true, nil
}

// Query returns a deep copy of the top-level elements in paint order.
func (s *Scene) Query() []*Element {
	return cloneElements(s.elements)
}

// Get returns a deep copy of the element with the given id.
func (s *Scene) Get(id string) (*Element, bool) {
	e := s.lookup(id)
	if e == nil {
		return nil, false
	}
	return e.Clone(), true
}

// Has reports whether id resolves to an element anywhere in the tree.
func (s *Scene) Has(id string) bool {
	return s.lookup(id) != nil
}

// IndexOf returns the paint-order position of a top-level element.
func (s *Scene) IndexOf(id string) (int, bool) {
	s.reindex()
	loc, ok := s.index[id]
	if !ok || loc.parent != nil {
		return 0, false
	}
	return loc.index, true
}

// IDs returns the top-level ids in paint order.
func (s *Scene) IDs() []string {
	out := make([]string, len(s.elements))
	for i, e := range s.elements {
		out[i] = e.ID
	}
	return out
}

// Clone returns an independent deep copy. Observers are not copied.
func (s *Scene) Clone() *Scene {
	return &Scene{
		width:      s.width,
		height:     s.height,
		background: s.background,
		elements:   cloneElements(s.elements),
		index:      make(map[string]location),
		stale:      true,
		newID:      s.newID,
		version:    s.version,
	}
}

// Resize applies the content-fit transform for the new canvas size to
// every top-level element and adopts the size.
func (s *Scene) Resize(width, height float64) (Fit, error) {
	if !(width > 0 && height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return Fit{}, invalid("resize", "target size %gx%g must be positive", width, height)
	}
	fit := ContentFit(s.width, s.height, width, height)
	for _, e := range s.elements {
		e.Transform = fit.Apply(e.Transform)
	}
	s.width, s.height = width, height
	s.emit(EventResized)
	return fit, nil
}

func (s *Scene) freshID() string {
	s.reindex()
	for {
		id := s.newID()
		if _, taken := s.index[id]; !taken && id != "" {
			return id
		}
	}
}

func (s *Scene) markStale() { s.stale = true }

func (s *Scene) reindex() {
	if !s.stale && s.index != nil {
		return
	}
	idx := make(map[string]location, len(s.index))
	var visit func(parent *Element, list []*Element)
	visit = func(parent *Element, list []*Element) {
		for i, e := range list {
			idx[e.ID] = location{parent: parent, index: i}
			if len(e.Children) > 0 {
				visit(e, e.Children)
			}
		}
	}
	visit(nil, s.elements)
	s.index = idx
	s.stale = false
}

func (s *Scene) lookup(id string) *Element {
	s.reindex()
	loc, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.container(loc.parent)[loc.index]
}

// container returns the slice holding children of parent, or the
// top-level list when parent is nil.
func (s *Scene) container(parent *Element) []*Element {
	if parent == nil {
		return s.elements
	}
	return parent.Children
}

func (s *Scene) setContainer(parent *Element, list []*Element) {
	if parent == nil {
		s.elements = list
		return
	}
	parent.Children = list
}
