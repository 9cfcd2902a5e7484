package document

import "math"

// Ptr returns a pointer to v. It keeps Patch literals short:
//
//	s.Mutate(id, document.Patch{X: document.Ptr(120.0), Fill: document.Ptr("#ff0000")})
func Ptr[T any](v T) *T { return &v }

// Patch is a partial update of one element. Nil fields are left untouched.
type Patch struct {
	Name *string

	X        *float64
	Y        *float64
	ScaleX   *float64
	ScaleY   *float64
	Rotation *float64
	Width    *float64
	Height   *float64

	Fill        *string
	Stroke      *string
	StrokeWidth *float64
	Opacity     *float64
	Shadow      *Shadow
	ClearShadow bool

	Visible *bool
	Locked  *bool

	Text     *string
	FontSize *float64
	Align    *TextAlign
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

func (p Patch) validate(e *Element) error {
	const op = "mutate"
	for _, v := range []*float64{p.X, p.Y, p.ScaleX, p.ScaleY, p.Rotation, p.Width, p.Height, p.StrokeWidth, p.Opacity, p.FontSize} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return invalid(op, "non-finite value")
		}
	}
	if p.Width != nil && *p.Width < 0 || p.Height != nil && *p.Height < 0 {
		return invalid(op, "negative size")
	}
	if p.Shadow != nil && p.ClearShadow {
		return invalid(op, "shadow both set and cleared")
	}

	app := e.Appearance
	if p.Fill != nil {
		app.Fill = *p.Fill
	}
	if p.Stroke != nil {
		app.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		app.StrokeWidth = *p.StrokeWidth
	}
	if p.Opacity != nil {
		app.Opacity = *p.Opacity
	}
	if p.Shadow != nil {
		app.Shadow = p.Shadow
	}
	if err := validateAppearance(op, app); err != nil {
		return err
	}

	if p.Text != nil || p.FontSize != nil || p.Align != nil {
		if e.Kind != KindText {
			return invalid(op, "text fields on a %s element", e.Kind)
		}
		if p.FontSize != nil && *p.FontSize <= 0 {
			return invalid(op, "font size must be positive")
		}
		if p.Align != nil && !p.Align.valid() {
			return invalid(op, "unknown alignment %q", *p.Align)
		}
	}
	return nil
}

func (p Patch) apply(e *Element) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	t := &e.Transform
	setFloat(&t.X, p.X)
	setFloat(&t.Y, p.Y)
	setFloat(&t.ScaleX, p.ScaleX)
	setFloat(&t.ScaleY, p.ScaleY)
	setFloat(&t.Rotation, p.Rotation)
	setFloat(&e.Width, p.Width)
	setFloat(&e.Height, p.Height)

	a := &e.Appearance
	if p.Fill != nil {
		a.Fill = *p.Fill
	}
	if p.Stroke != nil {
		a.Stroke = *p.Stroke
	}
	setFloat(&a.StrokeWidth, p.StrokeWidth)
	setFloat(&a.Opacity, p.Opacity)
	if p.Shadow != nil {
		sh := *p.Shadow
		a.Shadow = &sh
	}
	if p.ClearShadow {
		a.Shadow = nil
	}

	if p.Visible != nil {
		e.Visible = *p.Visible
	}
	if p.Locked != nil {
		e.Locked = *p.Locked
	}

	if e.Text != nil {
		if p.Text != nil {
			e.Text.Content = *p.Text
		}
		setFloat(&e.Text.FontSize, p.FontSize)
		if p.Align != nil {
			e.Text.Align = *p.Align
		}
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
