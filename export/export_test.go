package export

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"image/jpeg"
	"image/png"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/studio/adjust"
	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/render"
)

func newScene(t *testing.T) *document.Scene {
	t.Helper()
	s := document.New(800, 600, document.WithIDGenerator(document.Sequential("el")))
	if _, err := s.AddElement(document.Spec{
		Kind:       document.KindShape,
		Transform:  document.Transform{X: 100, Y: 100},
		Width:      200,
		Height:     100,
		Appearance: document.Appearance{Fill: "#ff0000"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddElement(document.Spec{
		Kind:      document.KindText,
		Transform: document.Transform{X: 100, Y: 300},
		Text:      &document.TextContent{Content: "Hello <world> & more", FontSize: 32},
	}); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFormats(t *testing.T) {
	got := Formats()
	for _, want := range []string{"jpeg", "json", "png", "svg"} {
		if !slices.Contains(got, want) {
			t.Errorf("Formats() = %v, missing %q", got, want)
		}
	}
	if !slices.IsSorted(got) {
		t.Errorf("Formats() = %v, want sorted", got)
	}
}

func TestRegister(t *testing.T) {
	enc := EncoderFunc(func(_ context.Context, w io.Writer, _ *document.Scene, _ Options) error {
		_, err := io.WriteString(w, "ok")
		return err
	})
	Register(Format{Name: "test-fmt", Encoder: enc})
	defer Unregister("test-fmt")

	f, err := Lookup("test-fmt")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if f.Extension != "test-fmt" {
		t.Errorf("Extension = %q, want name as default", f.Extension)
	}
	data, err := ExportOne(context.Background(), newScene(t), "test-fmt", Options{})
	if err != nil || string(data) != "ok" {
		t.Errorf("ExportOne() = %q, %v, want \"ok\", nil", data, err)
	}

	for name, f := range map[string]Format{
		"duplicate":   {Name: "test-fmt", Encoder: enc},
		"nil encoder": {Name: "other"},
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register() did not panic")
				}
			}()
			Register(f)
		})
	}
}

func TestExportOneUnknownFormat(t *testing.T) {
	_, err := ExportOne(context.Background(), newScene(t), "bmp", Options{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("ExportOne() error = %v, want ErrUnknownFormat", err)
	}
	var ee *ExportError
	if !errors.As(err, &ee) || ee.Target != "bmp" {
		t.Errorf("ExportOne() error = %#v, want *ExportError for bmp", err)
	}
}

func TestExportOnePNG(t *testing.T) {
	s := newScene(t)
	tests := []struct {
		name  string
		opts  Options
		w, h  int
		alpha uint32
	}{
		{"default", Options{}, 800, 600, 0xffff},
		{"scaled", Options{Scale: 0.5}, 400, 300, 0xffff},
		{"transparent", Options{Transparent: true}, 800, 600, 0},
		{"region", Options{Region: &document.Rect{MinX: 0, MinY: 0, MaxX: 50, MaxY: 40}}, 50, 40, 0xffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ExportOne(context.Background(), s, "png", tt.opts)
			if err != nil {
				t.Fatalf("ExportOne() error = %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("bounds = %v, want %dx%d", b, tt.w, tt.h)
			}
			if _, _, _, a := img.At(1, 1).RGBA(); a != tt.alpha {
				t.Errorf("corner alpha = %#x, want %#x", a, tt.alpha)
			}
		})
	}
}

func TestExportOneJPEG(t *testing.T) {
	s := newScene(t)
	data, err := ExportOne(context.Background(), s, "jpeg", Options{Transparent: true, Quality: 0.8})
	if err != nil {
		t.Fatalf("ExportOne() error = %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("bounds = %v, want 800x600", b)
	}
	if r, g, b, _ := img.At(5, 5).RGBA(); r < 0xf000 || g < 0xf000 || b < 0xf000 {
		t.Errorf("corner = %x %x %x, want the background painted", r, g, b)
	}

	for _, q := range []float64{-0.1, 1.5} {
		if _, err := ExportOne(context.Background(), s, "jpeg", Options{Quality: q}); !errors.Is(err, ErrBadQuality) {
			t.Errorf("ExportOne(quality %g) error = %v, want ErrBadQuality", q, err)
		}
	}
}

func TestExportOneJSONRoundTrip(t *testing.T) {
	s := newScene(t)
	data, err := ExportOne(context.Background(), s, "json", Options{})
	if err != nil {
		t.Fatal(err)
	}
	back, err := document.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if !slices.Equal(back.IDs(), s.IDs()) {
		t.Errorf("IDs() = %v, want %v", back.IDs(), s.IDs())
	}
	w, h := back.Size()
	if w != 800 || h != 600 {
		t.Errorf("Size() = %gx%g, want 800x600", w, h)
	}
}

func TestExportOneSVG(t *testing.T) {
	s := newScene(t)
	img, _ := s.AddElement(document.Spec{
		Kind:      document.KindImage,
		Transform: document.Transform{X: 400, Y: 50, Rotation: 10},
		Width:     100, Height: 80,
		Image:     &document.ImageSource{Ref: "photo.png"},
	})
	adjust.Apply(s, img, &adjust.Params{Saturation: -100})

	data, err := ExportOne(context.Background(), s, "svg", Options{})
	if err != nil {
		t.Fatalf("ExportOne() error = %v", err)
	}
	counts := svgElements(t, data)
	want := map[string]int{
		"svg":           1,
		"rect":          2,
		"text":          1,
		"tspan":         1,
		"image":         1,
		"filter":        1,
		"feColorMatrix": 1,
	}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("<%s> count = %d, want %d", name, counts[name], n)
		}
	}
	if !bytes.Contains(data, []byte("Hello &lt;world&gt; &amp; more")) {
		t.Error("text content not escaped")
	}
	if !bytes.Contains(data, []byte(`fill="#ff0000"`)) {
		t.Error("rect fill missing")
	}

	data, err = ExportOne(context.Background(), s, "svg", Options{Transparent: true})
	if err != nil {
		t.Fatal(err)
	}
	if n := svgElements(t, data)["rect"]; n != 1 {
		t.Errorf("transparent <rect> count = %d, want 1", n)
	}
}

func TestMatrixAttribute(t *testing.T) {
	tests := []struct {
		m    document.Matrix
		want string
	}{
		{document.Identity(), ""},
		{document.Translate(10, 20.5), "translate(10 20.5)"},
		{document.Translate(5, 6).Multiply(document.Scale(2, 3)), "matrix(2 0 0 3 5 6)"},
		{document.Rotate(90), "matrix(0 1 -1 0 0 0)"},
	}
	for _, tt := range tests {
		if got := matrix(tt.m); got != tt.want {
			t.Errorf("matrix(%v) = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestExportLeavesSceneUntouched(t *testing.T) {
	s := newScene(t)
	before, _ := s.Serialize()
	version := s.Version()
	for _, f := range Formats() {
		if _, err := ExportOne(context.Background(), s, f, Options{Scale: 0.25}); err != nil {
			t.Fatalf("ExportOne(%s) error = %v", f, err)
		}
	}
	after, _ := s.Serialize()
	if !bytes.Equal(before, after) || s.Version() != version {
		t.Error("export modified the scene")
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		maxEdge int
		wantW   int
		wantH   int
	}{
		{"landscape", 800, 600, 200, 200, 150},
		{"portrait", 600, 1200, 300, 150, 300},
		{"already small", 100, 50, 200, 100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := document.New(tt.w, tt.h)
			data, err := Thumbnail(context.Background(), s, tt.maxEdge, nil)
			if err != nil {
				t.Fatalf("Thumbnail() error = %v", err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("Thumbnail() = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
	if _, err := Thumbnail(context.Background(), document.New(10, 10), 0, nil); err == nil {
		t.Error("Thumbnail(maxEdge 0) error = nil")
	}
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExportOne(ctx, newScene(t), "png", Options{Renderer: render.New()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExportOne() error = %v, want context.Canceled", err)
	}
}

func svgElements(t *testing.T, data []byte) map[string]int {
	t.Helper()
	counts := map[string]int{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return counts
		}
		if err != nil {
			t.Fatalf("invalid SVG: %v\n%s", err, data)
		}
		if se, ok := tok.(xml.StartElement); ok {
			counts[se.Name.Local]++
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"square", "square"},
		{"Story 9:16", "Story_9_16"},
		{"Café crème", "Cafe_creme"},
		{"../etc/passwd", "_etc_passwd"},
		{"", "untitled"},
		{"   ", "untitled"},
		{"日本", "untitled"},
		{"a-b_c.d", "a-b_c.d"},
		{strings.Repeat("x", 100), strings.Repeat("x", maxNameLen)},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameSetUnique(t *testing.T) {
	s := nameSet{}
	want := []string{"square.png", "square_2.png", "square_3.png", "story.png"}
	got := []string{s.unique("square", "png"), s.unique("square", "png"), s.unique("square", "png"), s.unique("story", "png")}
	if !slices.Equal(got, want) {
		t.Errorf("unique() = %v, want %v", got, want)
	}
}
