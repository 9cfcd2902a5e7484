package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/render"
)

// DefaultQuality is the JPEG quality used when Options.Quality is zero.
const DefaultQuality = 0.92

// Options control a single rendition.
type Options struct {
	// Scale multiplies raster dimensions relative to the canvas. Zero
	// means 1. Ignored by vector and snapshot formats.
	Scale float64

	// Transparent omits the background fill. Honored by png and svg;
	// jpeg always paints the background.
	Transparent bool

	// Quality in [0,1] for jpeg. Zero means DefaultQuality.
	Quality float64

	// Region restricts raster output to a rectangle of the canvas.
	Region *document.Rect

	// Renderer rasterizes scenes. Nil means render.Default().
	Renderer *render.Renderer
}

func (o Options) renderer() *render.Renderer {
	if o.Renderer != nil {
		return o.Renderer
	}
	return render.Default()
}

func (o Options) quality() (float64, error) {
	q := o.Quality
	if q == 0 {
		return DefaultQuality, nil
	}
	if !(q >= 0 && q <= 1) {
		return 0, fmt.Errorf("%w: got %g", ErrBadQuality, q)
	}
	return q, nil
}

func (o Options) renderOptions() render.Options {
	return render.Options{Scale: o.Scale, Transparent: o.Transparent, Region: o.Region}
}

// Encode writes s in the named format to w. Failures are reported as
// *ExportError.
func Encode(ctx context.Context, w io.Writer, s *document.Scene, format string, o Options) error {
	f, err := Lookup(format)
	if err != nil {
		return &ExportError{Target: format, Err: err}
	}
	if err := f.Encoder.Encode(ctx, w, s, o); err != nil {
		return &ExportError{Target: format, Err: err}
	}
	return nil
}

// ExportOne encodes s in the named format and returns the bytes.
func ExportOne(ctx context.Context, s *document.Scene, format string, o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(ctx, &buf, s, format, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Thumbnail renders a PNG preview whose longer edge is at most maxEdge
// pixels. Canvases already within the bound are not enlarged.
func Thumbnail(ctx context.Context, s *document.Scene, maxEdge int, r *render.Renderer) ([]byte, error) {
	if maxEdge <= 0 {
		return nil, &ExportError{Target: "thumbnail", Err: fmt.Errorf("max edge %d must be positive", maxEdge)}
	}
	return ExportOne(ctx, s, "png", Options{Scale: ThumbnailScale(s, maxEdge), Renderer: r})
}

// ThumbnailScale returns the multiplier that fits the canvas's longer
// edge into maxEdge, capped at 1.
func ThumbnailScale(s *document.Scene, maxEdge int) float64 {
	w, h := s.Size()
	long := math.Max(w, h)
	if long <= 0 {
		return 1
	}
	return math.Min(1, float64(maxEdge)/long)
}
