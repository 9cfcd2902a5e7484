package adjust

import (
	"math"
	"testing"

	"github.com/gogpu/studio/document"
)

func TestBuildMatrixIdentity(t *testing.T) {
	if m := BuildMatrix(0, 0, 0); m != Identity() {
		t.Errorf("BuildMatrix(0, 0, 0) = %v, want identity", m)
	}
	if !BuildMatrix(0, 0, 0).IsIdentity() {
		t.Error("IsIdentity() = false")
	}
}

func TestBuildMatrixDesaturate(t *testing.T) {
	m := BuildMatrix(0, -100, 0)
	want := [3]float64{LumR, LumG, LumB}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if got := m[row*5+col]; got != want[col] {
				t.Errorf("m[%d][%d] = %v, want %v", row, col, got, want[col])
			}
		}
		if m[row*5+3] != 0 || m[row*5+4] != 0 {
			t.Errorf("row %d has alpha or bias terms", row)
		}
	}
	r, g, b, _ := m.Transform(1, 0, 0, 1)
	if r != g || g != b {
		t.Errorf("desaturated red = (%v, %v, %v), want equal channels", r, g, b)
	}
}

func TestHuePreservesGray(t *testing.T) {
	for _, hue := range []float64{-180, -90, -30, 45, 120, 180} {
		m := BuildMatrix(hue, 0, 0)
		r, g, b, a := m.Transform(0.5, 0.5, 0.5, 1)
		for _, v := range []float64{r, g, b} {
			if math.Abs(v-0.5) > 1e-9 {
				t.Errorf("hue %v: gray -> (%v, %v, %v), want 0.5", hue, r, g, b)
				break
			}
		}
		if a != 1 {
			t.Errorf("hue %v: alpha = %v, want 1", hue, a)
		}
	}
}

func TestHueRotatesColor(t *testing.T) {
	r, g, _, _ := BuildMatrix(120, 0, 0).Transform(1, 0, 0, 1)
	if g <= r {
		t.Errorf("120 degree rotation of red: r=%v g=%v, want green to dominate", r, g)
	}
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		name       string
		brightness float64
		in, want   float64
	}{
		{"black", -100, 0.6, 0},
		{"half dark", -50, 0.6, 0.3},
		{"white", 100, 0.2, 1},
		{"half light", 50, 0.2, 0.6},
		{"clamped", 500, 0.2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, _ := BuildMatrix(0, 0, tt.brightness).Transform(tt.in, tt.in, tt.in, 1)
			if math.Abs(r-tt.want) > 1e-12 {
				t.Errorf("brightness %v on %v = %v, want %v", tt.brightness, tt.in, r, tt.want)
			}
		})
	}
}

func TestThenOrder(t *testing.T) {
	dark := Brighten(-0.5)
	light := Brighten(0.5)
	r, _, _, _ := dark.Then(light).Transform(1, 1, 1, 1)
	// 1*0.5 = 0.5, then 0.5*0.5+0.5 = 0.75
	if math.Abs(r-0.75) > 1e-12 {
		t.Errorf("dark.Then(light) on white = %v, want 0.75", r)
	}
}

func TestFromSlice(t *testing.T) {
	m := BuildMatrix(30, 20, 10)
	got, ok := FromSlice(m.Slice())
	if !ok || got != m {
		t.Errorf("FromSlice(Slice()) = %v, %v", got, ok)
	}
	if _, ok := FromSlice([]float64{1, 2}); ok {
		t.Error("FromSlice(short) ok = true")
	}
}

func newImageScene(t *testing.T) (*document.Scene, string) {
	t.Helper()
	s := document.New(100, 100, document.WithIDGenerator(document.Sequential("el")))
	id, err := s.AddElement(document.Spec{
		Kind:  document.KindImage,
		Image: &document.ImageSource{Ref: "photo.png", NaturalWidth: 10, NaturalHeight: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s, id
}

func TestApplyReplacesByTag(t *testing.T) {
	s, id := newImageScene(t)
	if _, err := s.SetFilter(id, document.Filter{Kind: document.FilterBlur, Radius: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(s, id, &Params{Hue: 40}); err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(s, id, &Params{Saturation: -30}); err != nil {
		t.Fatal(err)
	}

	e, _ := s.Get(id)
	filters := e.Appearance.Filters.All()
	if len(filters) != 2 {
		t.Fatalf("chain has %d entries, want 2", len(filters))
	}
	if filters[0].Kind != document.FilterBlur || filters[0].Radius != 3 {
		t.Errorf("blur entry = %+v, want untouched", filters[0])
	}
	p, ok := Current(s, id)
	if !ok || p != (Params{Saturation: -30}) {
		t.Errorf("Current() = %+v, %v, want saturation -30", p, ok)
	}
	m, _ := FromSlice(filters[1].Matrix)
	if m != BuildMatrix(0, -30, 0) {
		t.Error("stored matrix does not match parameters")
	}
}

func TestApplyNilRemoves(t *testing.T) {
	s, id := newImageScene(t)
	s.SetFilter(id, document.Filter{Kind: document.FilterBlur, Radius: 1})
	Apply(s, id, &Params{Brightness: 10})

	changed, err := Apply(s, id, nil)
	if !changed || err != nil {
		t.Fatalf("Apply(nil) = %v, %v, want true, nil", changed, err)
	}
	if _, ok := Current(s, id); ok {
		t.Error("adjustment still present")
	}
	e, _ := s.Get(id)
	if e.Appearance.Filters.Len() != 1 {
		t.Errorf("chain length = %d, want 1", e.Appearance.Filters.Len())
	}
	if changed, _ := Apply(s, id, nil); changed {
		t.Error("second Apply(nil) reported a change")
	}
}

func TestApplyStaleAndNonImage(t *testing.T) {
	s, _ := newImageScene(t)
	if ok, err := Apply(s, "gone", &Params{Hue: 1}); ok || err != nil {
		t.Errorf("Apply(stale) = %v, %v, want false, nil", ok, err)
	}
	rect, _ := s.AddElement(document.Spec{Kind: document.KindShape, Width: 5, Height: 5})
	if _, err := Apply(s, rect, &Params{Hue: 1}); err == nil {
		t.Error("Apply(shape) error = nil")
	}
}

func TestApplyChain(t *testing.T) {
	chain := document.NewFilterChain(document.Filter{Kind: document.FilterBlur, Radius: 2})
	ApplyChain(&chain, &Params{Hue: 10})
	ApplyChain(&chain, &Params{Hue: 20})
	if chain.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", chain.Len())
	}
	ApplyChain(&chain, nil)
	if _, ok := chain.Get(document.FilterAdjust); ok {
		t.Error("adjust entry not removed")
	}
}
