package document

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func newTestScene() *Scene {
	return New(800, 600, WithIDGenerator(Sequential("el")))
}

func addRect(t *testing.T, s *Scene, x, y, w, h float64) string {
	t.Helper()
	id, err := s.AddElement(Spec{
		Kind:       KindShape,
		Transform:  Transform{X: x, Y: y},
		Width:      w,
		Height:     h,
		Appearance: Appearance{Fill: "#ff0000"},
	})
	if err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}
	return id
}

func TestNewScene(t *testing.T) {
	s := New(800, 600, WithBackground("#ffffff"))
	w, h := s.Size()
	if w != 800 || h != 600 {
		t.Errorf("Size() = %vx%v, want 800x600", w, h)
	}
	if s.Background() != "#ffffff" {
		t.Errorf("Background() = %q, want #ffffff", s.Background())
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestAddElementDefaults(t *testing.T) {
	s := newTestScene()
	id := addRect(t, s, 100, 100, 50, 40)

	e, ok := s.Get(id)
	if !ok {
		t.Fatalf("Get(%q) not found", id)
	}
	if e.Kind != KindShape || e.Shape != ShapeRect {
		t.Errorf("kind/shape = %s/%s, want shape/rect", e.Kind, e.Shape)
	}
	if e.Transform.ScaleX != 1 || e.Transform.ScaleY != 1 {
		t.Errorf("scale = %v,%v, want 1,1", e.Transform.ScaleX, e.Transform.ScaleY)
	}
	if e.Appearance.Opacity != 1 {
		t.Errorf("opacity = %v, want 1", e.Appearance.Opacity)
	}
	if !e.Visible || e.Locked {
		t.Errorf("visible/locked = %v/%v, want true/false", e.Visible, e.Locked)
	}
}

func TestAddElementAppendsOnTop(t *testing.T) {
	s := newTestScene()
	a := addRect(t, s, 0, 0, 10, 10)
	b := addRect(t, s, 0, 0, 10, 10)
	if got := s.IDs(); !slices.Equal(got, []string{a, b}) {
		t.Errorf("IDs() = %v, want [%s %s]", got, a, b)
	}
	if a == b {
		t.Error("ids must be unique")
	}
}

func TestAddElementValidation(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"unknown kind", Spec{Kind: "blob"}},
		{"group", Spec{Kind: KindGroup}},
		{"text without content", Spec{Kind: KindText}},
		{"image without source", Spec{Kind: KindImage, Image: &ImageSource{}}},
		{"bad shape", Spec{Kind: KindShape, Shape: "star"}},
		{"negative size", Spec{Kind: KindShape, Width: -1}},
		{"opacity", Spec{Kind: KindShape, Appearance: Appearance{Opacity: 2}}},
		{"fill", Spec{Kind: KindShape, Appearance: Appearance{Fill: "red"}}},
		{"NaN width", Spec{Kind: KindShape, Width: math.NaN()}},
		{"infinite height", Spec{Kind: KindShape, Height: math.Inf(1)}},
		{"NaN font size", Spec{Kind: KindText, Text: &TextContent{Content: "a", FontSize: math.NaN()}}},
		{"NaN line height", Spec{Kind: KindText, Text: &TextContent{Content: "a", LineHeight: math.NaN()}}},
		{"NaN stroke width", Spec{Kind: KindShape, Appearance: Appearance{StrokeWidth: math.NaN()}}},
		{"NaN shadow offset", Spec{Kind: KindShape, Appearance: Appearance{Shadow: &Shadow{Color: "#000", OffsetX: math.NaN()}}}},
		{"infinite shadow blur", Spec{Kind: KindShape, Appearance: Appearance{Shadow: &Shadow{Color: "#000", Blur: math.Inf(1)}}}},
		{"NaN filter", Spec{Kind: KindImage, Image: &ImageSource{Ref: "a.png"},
			Appearance: Appearance{Filters: NewFilterChain(Filter{Kind: FilterBlur, Radius: math.NaN()})}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene()
			_, err := s.AddElement(tt.spec)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("AddElement() error = %v, want *ValidationError", err)
			}
			if s.Len() != 0 {
				t.Errorf("Len() = %d after failed add, want 0", s.Len())
			}
		})
	}
}

func TestAddTextEstimatesBox(t *testing.T) {
	s := newTestScene()
	id, err := s.AddElement(Spec{Kind: KindText, Text: &TextContent{Content: "hello\nworld!"}})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := s.Get(id)
	if e.Text.FontSize != DefaultFontSize {
		t.Errorf("FontSize = %v, want %v", e.Text.FontSize, DefaultFontSize)
	}
	if e.Width <= 0 || e.Height <= 0 {
		t.Errorf("box = %vx%v, want positive", e.Width, e.Height)
	}
}

func TestRemoveElements(t *testing.T) {
	s := newTestScene()
	a := addRect(t, s, 0, 0, 10, 10)
	b := addRect(t, s, 20, 0, 10, 10)
	c := addRect(t, s, 40, 0, 10, 10)

	removed := s.RemoveElements(b, "missing")
	if !slices.Equal(removed, []string{b}) {
		t.Errorf("RemoveElements() = %v, want [%s]", removed, b)
	}
	if got := s.IDs(); !slices.Equal(got, []string{a, c}) {
		t.Errorf("IDs() = %v, want [%s %s]", got, a, c)
	}
	if s.Has(b) {
		t.Error("removed element still resolves")
	}
}

func TestRemoveAllGroupChildrenKeepsGroup(t *testing.T) {
	s := newTestScene()
	a := addRect(t, s, 0, 0, 10, 10)
	b := addRect(t, s, 20, 0, 10, 10)
	g, err := s.Group(a, b)
	if err != nil {
		t.Fatal(err)
	}
	removed := s.RemoveElements(a, b)
	if len(removed) != 2 {
		t.Fatalf("RemoveElements() removed %d, want 2", len(removed))
	}
	e, ok := s.Get(g)
	if !ok {
		t.Fatal("empty group was removed")
	}
	if len(e.Children) != 0 {
		t.Errorf("group has %d children, want 0", len(e.Children))
	}
}

func TestMutate(t *testing.T) {
	s := newTestScene()
	id := addRect(t, s, 0, 0, 10, 10)

	ok, err := s.Mutate(id, Patch{X: Ptr(25.0), Fill: Ptr("#00ff00"), Locked: Ptr(true)})
	if err != nil || !ok {
		t.Fatalf("Mutate() = %v, %v, want true, nil", ok, err)
	}
	e, _ := s.Get(id)
	if e.Transform.X != 25 || e.Appearance.Fill != "#00ff00" || !e.Locked {
		t.Errorf("element = %+v, patch not applied", e)
	}
}

func TestMutateStaleIDIsNoop(t *testing.T) {
	s := newTestScene()
	before := s.Version()
	ok, err := s.Mutate("gone", Patch{X: Ptr(1.0)})
	if ok || err != nil {
		t.Errorf("Mutate(stale) = %v, %v, want false, nil", ok, err)
	}
	if s.Version() != before {
		t.Error("stale mutate changed version")
	}
}

func TestMutateIsAllOrNothing(t *testing.T) {
	s := newTestScene()
	id := addRect(t, s, 0, 0, 10, 10)
	_, err := s.Mutate(id, Patch{X: Ptr(50.0), Opacity: Ptr(1.5)})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Mutate() error = %v, want *ValidationError", err)
	}
	e, _ := s.Get(id)
	if e.Transform.X != 0 {
		t.Errorf("X = %v after rejected patch, want 0", e.Transform.X)
	}
}

func TestNonFiniteEditsKeepSceneSerializable(t *testing.T) {
	s := newTestScene()
	id := addRect(t, s, 0, 0, 10, 10)
	img, err := s.AddElement(Spec{Kind: KindImage, Image: &ImageSource{Ref: "a.png", NaturalWidth: 4, NaturalHeight: 4}})
	if err != nil {
		t.Fatal(err)
	}
	before, err := s.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	nan := math.NaN()
	patches := []struct {
		name  string
		patch Patch
	}{
		{"shadow offset", Patch{Shadow: &Shadow{Color: "#000", OffsetX: nan}}},
		{"shadow offset y", Patch{Shadow: &Shadow{Color: "#000", OffsetY: math.Inf(-1)}}},
		{"shadow blur", Patch{Shadow: &Shadow{Color: "#000", Blur: nan}}},
		{"stroke width", Patch{StrokeWidth: Ptr(nan)}},
		{"width", Patch{Width: Ptr(nan)}},
	}
	for _, tt := range patches {
		if ok, err := s.Mutate(id, tt.patch); ok || err == nil {
			t.Errorf("Mutate(%s) = %v, %v, want false, error", tt.name, ok, err)
		}
	}
	filters := []Filter{
		{Kind: FilterBlur, Radius: nan},
		{Kind: FilterAdjust, Hue: nan, Matrix: make([]float64, MatrixLen)},
		{Kind: FilterAdjust, Matrix: append(make([]float64, MatrixLen-1), math.Inf(1))},
	}
	for _, f := range filters {
		if ok, err := s.SetFilter(img, f); ok || err == nil {
			t.Errorf("SetFilter(%+v) = %v, %v, want false, error", f, ok, err)
		}
	}
	if _, err := s.Resize(nan, 100); err == nil {
		t.Error("Resize(NaN, 100) error = nil")
	}

	after, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize() after rejected edits error = %v", err)
	}
	if string(after) != string(before) {
		t.Error("rejected edits changed the scene")
	}
}

func TestMutateTextFieldsOnShape(t *testing.T) {
	s := newTestScene()
	id := addRect(t, s, 0, 0, 10, 10)
	if _, err := s.Mutate(id, Patch{Text: Ptr("hi")}); err == nil {
		t.Error("Mutate(text on shape) error = nil, want validation error")
	}
}

func TestQueryReturnsCopies(t *testing.T) {
	s := newTestScene()
	id := addRect(t, s, 0, 0, 10, 10)
	q := s.Query()
	q[0].Transform.X = 999
	e, _ := s.Get(id)
	if e.Transform.X != 0 {
		t.Error("mutating Query() result changed the scene")
	}
}

func TestReplaceImageSource(t *testing.T) {
	s := newTestScene()
	id, err := s.AddElement(Spec{
		Kind:      KindImage,
		Name:      "photo",
		Transform: Transform{X: 5, Y: 6, Rotation: 30},
		Image:     &ImageSource{Ref: "a.png", NaturalWidth: 100, NaturalHeight: 80},
	})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := s.ReplaceImageSource(id, "a-nobg.png", 0, 0)
	if !ok || err != nil {
		t.Fatalf("ReplaceImageSource() = %v, %v", ok, err)
	}
	e, _ := s.Get(id)
	if e.Image.Ref != "a-nobg.png" || e.Name != "photo" || e.Transform.Rotation != 30 || e.Image.NaturalWidth != 100 {
		t.Errorf("element = %+v, %+v", e, e.Image)
	}

	shape := addRect(t, s, 0, 0, 1, 1)
	if _, err := s.ReplaceImageSource(shape, "x.png", 0, 0); err == nil {
		t.Error("ReplaceImageSource(shape) error = nil, want validation error")
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestScene()
	var events []EventType
	cancel := s.Subscribe(func(ev Event) { events = append(events, ev.Type) })

	id := addRect(t, s, 0, 0, 10, 10)
	s.Mutate(id, Patch{Y: Ptr(3.0)})
	s.RemoveElements(id)
	cancel()
	addRect(t, s, 0, 0, 10, 10)

	want := []EventType{EventAdded, EventMutated, EventRemoved}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestResizeAppliesContentFit(t *testing.T) {
	s := New(1000, 1000, WithIDGenerator(Sequential("el")))
	id := addRect(t, s, 100, 200, 10, 10)
	fit, err := s.Resize(500, 1000)
	if err != nil {
		t.Fatal(err)
	}
	e, _ := s.Get(id)
	wantX := 100*fit.Scale + fit.OffsetX
	wantY := 200*fit.Scale + fit.OffsetY
	if e.Transform.X != wantX || e.Transform.Y != wantY || e.Transform.ScaleX != 0.5 {
		t.Errorf("transform = %+v, want x=%v y=%v scale=0.5", e.Transform, wantX, wantY)
	}
	if w, h := s.Size(); w != 500 || h != 1000 {
		t.Errorf("Size() = %vx%v, want 500x1000", w, h)
	}
	if _, err := s.Resize(0, 10); err == nil {
		t.Error("Resize(0, 10) error = nil, want validation error")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := newTestScene()
	id := addRect(t, s, 0, 0, 10, 10)
	c := s.Clone()
	c.Mutate(id, Patch{X: Ptr(42.0)})
	c.AddElement(Spec{Kind: KindShape})
	e, _ := s.Get(id)
	if e.Transform.X != 0 || s.Len() != 1 {
		t.Error("editing a clone changed the original")
	}
}
