// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg"

	"github.com/gogpu/studio/adjust"
	"github.com/gogpu/studio/document"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func newScene(w, h float64) *document.Scene {
	return document.New(w, h, document.WithIDGenerator(document.Sequential("el")))
}

func addRect(t *testing.T, s *document.Scene, x, y, w, h float64, fill string) string {
	t.Helper()
	id, err := s.AddElement(document.Spec{
		Kind:       document.KindShape,
		Transform:  document.Transform{X: x, Y: y},
		Width:      w,
		Height:     h,
		Appearance: document.Appearance{Fill: fill},
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func mustRender(t *testing.T, r *Renderer, s *document.Scene, o Options) *image.RGBA {
	t.Helper()
	img, err := r.Render(context.Background(), s, o)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return img
}

func TestSize(t *testing.T) {
	s := newScene(800, 600)
	tests := []struct {
		name    string
		opts    Options
		w, h    int
		wantErr error
	}{
		{"default scale", Options{}, 800, 600, nil},
		{"double", Options{Scale: 2}, 1600, 1200, nil},
		{"thumbnail", Options{Scale: 0.25}, 200, 150, nil},
		{"region", Options{Region: &document.Rect{MinX: 100, MinY: 100, MaxX: 300, MaxY: 200}}, 200, 100, nil},
		{"negative scale", Options{Scale: -1}, 0, 0, ErrBadScale},
		{"empty region", Options{Region: &document.Rect{MinX: 5, MinY: 5, MaxX: 5, MaxY: 9}}, 0, 0, ErrEmptyRegion},
		{"too large", Options{Scale: 100}, 0, 0, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := Size(s, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Size() error = %v, want %v", err, tt.wantErr)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestRenderBackground(t *testing.T) {
	r := New()
	s := newScene(20, 10)
	if got := mustRender(t, r, s, Options{}).RGBAAt(5, 5); got != white {
		t.Errorf("default background = %v, want white", got)
	}

	s.SetBackground("#0000ff")
	if got := mustRender(t, r, s, Options{}).RGBAAt(5, 5); got != blue {
		t.Errorf("background = %v, want blue", got)
	}
	if got := mustRender(t, r, s, Options{Transparent: true}).RGBAAt(5, 5); got.A != 0 {
		t.Errorf("transparent background alpha = %d, want 0", got.A)
	}
}

func TestRenderShapes(t *testing.T) {
	r := New()
	s := newScene(200, 200)
	addRect(t, s, 100, 100, 50, 50, "#ff0000")

	img := mustRender(t, r, s, Options{})
	if got := img.RGBAAt(125, 125); got != red {
		t.Errorf("inside rect = %v, want red", got)
	}
	if got := img.RGBAAt(10, 10); got != white {
		t.Errorf("outside rect = %v, want white", got)
	}

	img = mustRender(t, r, s, Options{Scale: 2})
	if got := img.RGBAAt(250, 250); got != red {
		t.Errorf("inside rect at 2x = %v, want red", got)
	}
}

func TestRenderPaintOrder(t *testing.T) {
	r := New()
	s := newScene(100, 100)
	bottom := addRect(t, s, 10, 10, 50, 50, "#ff0000")
	addRect(t, s, 30, 30, 50, 50, "#0000ff")

	if got := mustRender(t, r, s, Options{}).RGBAAt(40, 40); got != blue {
		t.Errorf("overlap = %v, want top-most blue", got)
	}
	s.BringToFront(bottom)
	if got := mustRender(t, r, s, Options{}).RGBAAt(40, 40); got != red {
		t.Errorf("overlap after BringToFront = %v, want red", got)
	}
}

func TestRenderVisibility(t *testing.T) {
	r := New()
	s := newScene(100, 100)
	hidden := addRect(t, s, 0, 0, 50, 50, "#ff0000")
	s.Mutate(hidden, document.Patch{Visible: document.Ptr(false)})
	locked := addRect(t, s, 50, 50, 50, 50, "#0000ff")
	s.Mutate(locked, document.Patch{Locked: document.Ptr(true)})
	faded := addRect(t, s, 0, 50, 50, 50, "#ff0000")
	s.Mutate(faded, document.Patch{Opacity: document.Ptr(0.0)})

	img := mustRender(t, r, s, Options{})
	if got := img.RGBAAt(25, 25); got != white {
		t.Errorf("hidden element drawn: %v", got)
	}
	if got := img.RGBAAt(75, 75); got != blue {
		t.Errorf("locked element = %v, want blue", got)
	}
	if got := img.RGBAAt(25, 75); got != white {
		t.Errorf("transparent element drawn: %v", got)
	}
}

func TestRenderRegion(t *testing.T) {
	r := New()
	s := newScene(200, 200)
	addRect(t, s, 100, 100, 50, 50, "#ff0000")

	img := mustRender(t, r, s, Options{Region: &document.Rect{MinX: 100, MinY: 100, MaxX: 150, MaxY: 150}})
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 50 {
		t.Fatalf("Bounds() = %v, want 50x50", img.Bounds())
	}
	for _, p := range []image.Point{{5, 5}, {25, 25}, {44, 44}} {
		if got := img.RGBAAt(p.X, p.Y); got != red {
			t.Errorf("region pixel %v = %v, want red", p, got)
		}
	}
}

func TestRenderImage(t *testing.T) {
	r := New(WithLoader(MapLoader{"blue": solidImage(2, 2, blue)}))
	s := newScene(100, 100)
	id, err := s.AddElement(document.Spec{
		Kind:      document.KindImage,
		Transform: document.Transform{X: 10, Y: 10},
		Width:     40,
		Height:    40,
		Image:     &document.ImageSource{Ref: "blue", NaturalWidth: 2, NaturalHeight: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	plain := mustRender(t, r, s, Options{})
	if got := plain.RGBAAt(30, 30); got != blue {
		t.Errorf("image pixel = %v, want blue", got)
	}
	if got := plain.RGBAAt(5, 5); got != white {
		t.Errorf("outside image = %v, want white", got)
	}

	if _, err := adjust.Apply(s, id, &adjust.Params{}); err != nil {
		t.Fatal(err)
	}
	identity := mustRender(t, r, s, Options{})
	if !bytes.Equal(plain.Pix, identity.Pix) {
		t.Error("identity adjustment changed pixels")
	}

	adjust.Apply(s, id, &adjust.Params{Saturation: -100})
	gray := mustRender(t, r, s, Options{}).RGBAAt(30, 30)
	if gray.R != gray.G || gray.G != gray.B {
		t.Errorf("desaturated pixel = %v, want gray", gray)
	}

	adjust.Apply(s, id, nil)
	if got := mustRender(t, r, s, Options{}); !bytes.Equal(plain.Pix, got.Pix) {
		t.Error("removing the adjustment did not restore the original pixels")
	}
}

func TestRenderMissingImageIsSkipped(t *testing.T) {
	r := New(WithLoader(MapLoader{}))
	s := newScene(50, 50)
	s.AddElement(document.Spec{
		Kind:  document.KindImage,
		Width: 50, Height: 50,
		Image: &document.ImageSource{Ref: "gone.png"},
	})
	img := mustRender(t, r, s, Options{})
	if got := img.RGBAAt(25, 25); got != white {
		t.Errorf("pixel = %v, want background", got)
	}
}

func TestRenderText(t *testing.T) {
	r := New()
	s := newScene(200, 100)
	_, err := s.AddElement(document.Spec{
		Kind:       document.KindText,
		Transform:  document.Transform{X: 10, Y: 10},
		Text:       &document.TextContent{Content: "Hello\nWorld", FontSize: 24},
		Appearance: document.Appearance{Fill: "#000000"},
	})
	if err != nil {
		t.Fatal(err)
	}
	img := mustRender(t, r, s, Options{})
	if n := countNot(img, white); n == 0 {
		t.Error("text drew no pixels")
	}
	e, _ := s.Get("el1")
	box := image.Rect(10, 10, 10+int(e.Width)+1, 10+int(e.Height)+1)
	if outside := countNot(img, white) - countNotIn(img, white, box); outside != 0 {
		t.Errorf("%d text pixels outside the element box", outside)
	}
}

func TestRenderShadow(t *testing.T) {
	r := New()
	s := newScene(100, 100)
	_, err := s.AddElement(document.Spec{
		Kind:      document.KindShape,
		Transform: document.Transform{X: 20, Y: 20},
		Width:     30, Height: 30,
		Appearance: document.Appearance{
			Fill:   "#ff0000",
			Shadow: &document.Shadow{Color: "#000000", OffsetX: 10, OffsetY: 10},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	img := mustRender(t, r, s, Options{})
	if got := img.RGBAAt(35, 35); got != red {
		t.Errorf("element = %v, want red over its shadow", got)
	}
	if got := img.RGBAAt(55, 55); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("shadow = %v, want black", got)
	}
	if got := img.RGBAAt(15, 15); got != white {
		t.Errorf("outside = %v, want white", got)
	}
}

func TestRenderCanceled(t *testing.T) {
	s := newScene(10, 10)
	addRect(t, s, 0, 0, 5, 5, "#ff0000")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Render(ctx, s, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestGroupUngroupRendersIdentically(t *testing.T) {
	r := New(WithLoader(MapLoader{"blue": solidImage(4, 4, blue)}))
	s := newScene(300, 200)
	a := addRect(t, s, 20, 30, 80, 40, "#ff0000")
	b, _ := s.AddElement(document.Spec{
		Kind:       document.KindShape,
		Shape:      document.ShapeEllipse,
		Transform:  document.Transform{X: 60, Y: 50, Rotation: 30, ScaleX: 1.5},
		Width:      50,
		Height:     30,
		Appearance: document.Appearance{Fill: "#00ff00", Stroke: "#000000", StrokeWidth: 2, Opacity: 0.5},
	})
	c, _ := s.AddElement(document.Spec{
		Kind:      document.KindImage,
		Transform: document.Transform{X: 150, Y: 40, Rotation: 15},
		Width:     60, Height: 60,
		Image:     &document.ImageSource{Ref: "blue"},
	})
	d, _ := s.AddElement(document.Spec{
		Kind:      document.KindText,
		Transform: document.Transform{X: 40, Y: 120},
		Text:      &document.TextContent{Content: "grouped", FontSize: 20},
	})
	addRect(t, s, 0, 0, 300, 10, "#0000ff")

	before := mustRender(t, r, s, Options{Scale: 1.5})

	g, err := s.Group(a, b, c, d)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Ungroup(g); err != nil {
		t.Fatal(err)
	}
	after := mustRender(t, r, s, Options{Scale: 1.5})

	if !bytes.Equal(before.Pix, after.Pix) {
		t.Errorf("render differs after group/ungroup in %d bytes", diffCount(before.Pix, after.Pix))
	}
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"data:text/plain;base64,aGVsbG8=", "hello", false},
		{"data:,a%20b", "a b", false},
		{"data:text/plain;base64,!!", "", true},
		{"data:nocomma", "", true},
		{"file.png", "", true},
	}
	for _, tt := range tests {
		got, err := DecodeDataURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("DecodeDataURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("DecodeDataURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func countNot(img *image.RGBA, c color.RGBA) int {
	return countNotIn(img, c, img.Bounds())
}

func countNotIn(img *image.RGBA, c color.RGBA, r image.Rectangle) int {
	n := 0
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != c {
				n++
			}
		}
	}
	return n
}

func diffCount(a, b []byte) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(3, 2, red)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "red.png"), buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	l := FileLoader{Root: dir}
	for _, ref := range []string{"red.png", uri} {
		img, err := l.Load(context.Background(), ref)
		if err != nil {
			t.Fatalf("Load(%.20s) error = %v", ref, err)
		}
		if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
			t.Errorf("Load(%.20s) bounds = %v, want 3x2", ref, b)
		}
	}
	if _, err := l.Load(context.Background(), "missing.png"); err == nil {
		t.Error("Load(missing.png) error = nil")
	}
}

func TestMatrixConvertsToGG(t *testing.T) {
	m := document.Translate(40, -12).
		Multiply(document.Rotate(30)).
		Multiply(document.Scale(1.5, 0.75))
	g := gg.Matrix(m)
	for _, p := range [][2]float64{{0, 0}, {10, 0}, {0, 10}, {-7.5, 3.25}} {
		x, y := m.TransformPoint(p[0], p[1])
		got := g.TransformPoint(gg.Pt(p[0], p[1]))
		if math.Abs(got.X-x) > 1e-9 || math.Abs(got.Y-y) > 1e-9 {
			t.Errorf("gg.Matrix(m).TransformPoint(%v) = (%v, %v), want (%v, %v)", p, got.X, got.Y, x, y)
		}
	}
}
