package document

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Kind is the variant tag of an Element.
type Kind string

// Element kinds.
const (
	KindShape Kind = "shape"
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindGroup Kind = "group"
)

// Valid reports whether k names a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindShape, KindText, KindImage, KindGroup:
		return true
	}
	return false
}

// ShapeType selects the outline drawn for a shape element.
type ShapeType string

// Shape types.
const (
	ShapeRect     ShapeType = "rect"
	ShapeEllipse  ShapeType = "ellipse"
	ShapeTriangle ShapeType = "triangle"
	ShapeLine     ShapeType = "line"
)

func (s ShapeType) valid() bool {
	switch s {
	case ShapeRect, ShapeEllipse, ShapeTriangle, ShapeLine:
		return true
	}
	return false
}

// TextAlign controls horizontal alignment of text lines inside the box.
type TextAlign string

// Text alignments.
const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

func (a TextAlign) valid() bool {
	switch a {
	case "", AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// Default text metrics used when a text spec leaves them unset.
const (
	DefaultFontSize   = 24.0
	DefaultLineHeight = 1.2
)

// Transform places an element in its parent's coordinate space.
// (X, Y) is the top-left corner of the local box; rotation (degrees) and
// scale are applied about that corner.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"`
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Matrix returns T(x,y)·R(rotation)·S(sx,sy).
func (t Transform) Matrix() Matrix {
	m := Translate(t.X, t.Y)
	if t.Rotation != 0 {
		m = m.Multiply(Rotate(t.Rotation))
	}
	if t.ScaleX != 1 || t.ScaleY != 1 {
		m = m.Multiply(Scale(t.ScaleX, t.ScaleY))
	}
	return m
}

func (t Transform) finite() bool {
	return finite(t.X, t.Y, t.ScaleX, t.ScaleY, t.Rotation)
}

// finite reports whether every value is neither NaN nor infinite.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// compose expresses child (local to t) in t's parent space.
// Exact when t carries no rotation or scale; otherwise rotation and scale
// are summed and multiplied, which is exact for uniform parent scale.
func (t Transform) compose(child Transform) Transform {
	if t.Rotation == 0 && t.ScaleX == 1 && t.ScaleY == 1 {
		child.X += t.X
		child.Y += t.Y
		return child
	}
	x, y := t.Matrix().TransformPoint(child.X, child.Y)
	return Transform{
		X:        x,
		Y:        y,
		ScaleX:   t.ScaleX * child.ScaleX,
		ScaleY:   t.ScaleY * child.ScaleY,
		Rotation: t.Rotation + child.Rotation,
	}
}

// Shadow is a drop shadow painted beneath an element.
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Appearance holds paint state. Empty Fill or Stroke means none.
type Appearance struct {
	Fill        string      `json:"fill,omitempty"`
	Stroke      string      `json:"stroke,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
	Opacity     float64     `json:"opacity"`
	Shadow      *Shadow     `json:"shadow,omitempty"`
	Filters     FilterChain `json:"filters"`
}

func (a Appearance) clone() Appearance {
	out := a
	if a.Shadow != nil {
		sh := *a.Shadow
		out.Shadow = &sh
	}
	out.Filters = a.Filters.clone()
	return out
}

// TextContent is the payload of a text element.
type TextContent struct {
	Content    string    `json:"content"`
	FontSize   float64   `json:"fontSize"`
	Align      TextAlign `json:"align,omitempty"`
	LineHeight float64   `json:"lineHeight,omitempty"`
}

// Lines splits the content on newlines.
func (t *TextContent) Lines() []string {
	return strings.Split(t.Content, "\n")
}

// ImageSource references the pixels of an image element. Ref is opaque to
// the document: a file path, a data: URI or a key understood by the
// renderer's loader.
type ImageSource struct {
	Ref           string `json:"ref"`
	NaturalWidth  int    `json:"naturalWidth,omitempty"`
	NaturalHeight int    `json:"naturalHeight,omitempty"`
}

// Element is one drawable unit. Children is only populated for groups and
// holds transforms local to the group.
type Element struct {
	ID         string       `json:"id"`
	Kind       Kind         `json:"kind"`
	Name       string       `json:"name,omitempty"`
	Transform  Transform    `json:"transform"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Shape      ShapeType    `json:"shape,omitempty"`
	Text       *TextContent `json:"text,omitempty"`
	Image      *ImageSource `json:"image,omitempty"`
	Appearance Appearance   `json:"appearance"`
	Visible    bool         `json:"visible"`
	Locked     bool         `json:"locked"`
	Children   []*Element   `json:"children,omitempty"`
}

// Clone returns a deep copy of e.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := *e
	out.Appearance = e.Appearance.clone()
	if e.Text != nil {
		t := *e.Text
		out.Text = &t
	}
	if e.Image != nil {
		img := *e.Image
		out.Image = &img
	}
	if e.Children != nil {
		out.Children = cloneElements(e.Children)
	}
	return &out
}

// Walk calls fn for e and every descendant in paint order.
// Returning false from fn skips that element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// LocalBounds returns the element box in its own coordinate space.
// Groups report the union of their children.
func (e *Element) LocalBounds() Rect {
	if e.Kind == KindGroup && len(e.Children) > 0 {
		r := EmptyRect()
		for _, c := range e.Children {
			r = r.Union(c.LocalBounds().Transform(c.Transform.Matrix()))
		}
		return r
	}
	return NewRect(0, 0, e.Width, e.Height)
}

func cloneElements(in []*Element) []*Element {
	out := make([]*Element, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

// Spec describes an element to add. Zero ScaleX/ScaleY default to 1 and a
// zero Opacity defaults to 1; set a transparent element through Mutate.
type Spec struct {
	Kind       Kind
	Name       string
	Transform  Transform
	Width      float64
	Height     float64
	Shape      ShapeType
	Text       *TextContent
	Image      *ImageSource
	Appearance Appearance
	Hidden     bool
	Locked     bool
}

// build validates the spec and produces an element without an id.
func (s Spec) build() (*Element, error) {
	const op = "add"
	switch s.Kind {
	case KindShape, KindText, KindImage:
	case KindGroup:
		return nil, invalid(op, "groups are created by grouping existing elements")
	default:
		return nil, invalid(op, "unknown kind %q", s.Kind)
	}

	t := s.Transform
	if t.ScaleX == 0 {
		t.ScaleX = 1
	}
	if t.ScaleY == 0 {
		t.ScaleY = 1
	}
	if !t.finite() {
		return nil, invalid(op, "transform must be finite")
	}
	if !finite(s.Width, s.Height) || s.Width < 0 || s.Height < 0 {
		return nil, invalid(op, "size %gx%g must be finite and non-negative", s.Width, s.Height)
	}

	app := s.Appearance.clone()
	if app.Opacity == 0 {
		app.Opacity = 1
	}
	if err := validateAppearance(op, app); err != nil {
		return nil, err
	}

	e := &Element{
		Kind:       s.Kind,
		Name:       s.Name,
		Transform:  t,
		Width:      s.Width,
		Height:     s.Height,
		Appearance: app,
		Visible:    !s.Hidden,
		Locked:     s.Locked,
	}

	switch s.Kind {
	case KindShape:
		e.Shape = s.Shape
		if e.Shape == "" {
			e.Shape = ShapeRect
		}
		if !e.Shape.valid() {
			return nil, invalid(op, "unknown shape %q", s.Shape)
		}
	case KindText:
		if s.Text == nil {
			return nil, invalid(op, "text element without text content")
		}
		txt := *s.Text
		if txt.FontSize == 0 {
			txt.FontSize = DefaultFontSize
		}
		if txt.LineHeight == 0 {
			txt.LineHeight = DefaultLineHeight
		}
		if !finite(txt.FontSize, txt.LineHeight) || txt.FontSize < 0 || txt.LineHeight < 0 {
			return nil, invalid(op, "font metrics must be finite and non-negative")
		}
		if !txt.Align.valid() {
			return nil, invalid(op, "unknown alignment %q", txt.Align)
		}
		e.Text = &txt
		if e.Width == 0 || e.Height == 0 {
			w, h := estimateTextBox(&txt)
			if e.Width == 0 {
				e.Width = w
			}
			if e.Height == 0 {
				e.Height = h
			}
		}
	case KindImage:
		if s.Image == nil || s.Image.Ref == "" {
			return nil, invalid(op, "image element without source")
		}
		img := *s.Image
		e.Image = &img
		if e.Width == 0 {
			e.Width = float64(img.NaturalWidth)
		}
		if e.Height == 0 {
			e.Height = float64(img.NaturalHeight)
		}
	}
	return e, nil
}

// estimateTextBox approximates the box of unmeasured text. Renderers with
// real font metrics may lay text out differently inside this box.
func estimateTextBox(t *TextContent) (w, h float64) {
	lines := t.Lines()
	longest := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > longest {
			longest = n
		}
	}
	return float64(longest) * t.FontSize * 0.6, float64(len(lines)) * t.FontSize * t.LineHeight
}

func validateAppearance(op string, a Appearance) error {
	if a.Opacity < 0 || a.Opacity > 1 || math.IsNaN(a.Opacity) {
		return invalid(op, "opacity %g outside [0,1]", a.Opacity)
	}
	if !finite(a.StrokeWidth) || a.StrokeWidth < 0 {
		return invalid(op, "stroke width %g must be finite and non-negative", a.StrokeWidth)
	}
	if !ValidColor(a.Fill) {
		return invalid(op, "bad fill color %q", a.Fill)
	}
	if !ValidColor(a.Stroke) {
		return invalid(op, "bad stroke color %q", a.Stroke)
	}
	if a.Shadow != nil {
		if !ValidColor(a.Shadow.Color) || a.Shadow.Color == "" {
			return invalid(op, "bad shadow color %q", a.Shadow.Color)
		}
		if !finite(a.Shadow.Blur, a.Shadow.OffsetX, a.Shadow.OffsetY) {
			return invalid(op, "shadow values must be finite")
		}
		if a.Shadow.Blur < 0 {
			return invalid(op, "negative shadow blur")
		}
	}
	for _, f := range a.Filters.entries {
		if err := f.validate(); err != nil {
			return invalid(op, "%v", err)
		}
	}
	return nil
}

// ValidColor reports whether s is empty or a #rgb, #rgba, #rrggbb or
// #rrggbbaa hex color.
func ValidColor(s string) bool {
	if s == "" {
		return true
	}
	if s[0] != '#' {
		return false
	}
	s = s[1:]
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
