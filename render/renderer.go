// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/internal/filter"
	"github.com/gogpu/studio/internal/logging"
)

// DefaultBackground is painted when the scene has no background color.
const DefaultBackground = "#ffffff"

// DefaultImageCacheSize is the number of decoded images kept per Renderer.
const DefaultImageCacheSize = 64

// Renderer rasterizes scenes. It is safe for concurrent use; each call
// to Render works on its own output buffer.
type Renderer struct {
	loader    Loader
	cacheSize int
	fonts     *Fonts
	images    *imageSource
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLoader sets the image loader. The default is a FileLoader rooted at
// the working directory.
func WithLoader(l Loader) Option {
	return func(r *Renderer) {
		if l != nil {
			r.loader = l
		}
	}
}

// WithFonts sets the font used for text elements.
func WithFonts(f *Fonts) Option {
	return func(r *Renderer) {
		if f != nil {
			r.fonts = f
		}
	}
}

// WithImageCacheSize bounds the decoded-image cache.
func WithImageCacheSize(n int) Option {
	return func(r *Renderer) {
		r.cacheSize = n
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		loader:    FileLoader{},
		cacheSize: DefaultImageCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fonts == nil {
		r.fonts = &Fonts{}
	}
	r.images = newImageSource(r.loader, r.cacheSize)
	return r
}

var defaultRenderer = sync.OnceValue(func() *Renderer { return New() })

// Default returns a shared Renderer with default options.
func Default() *Renderer { return defaultRenderer() }

// Fonts returns the renderer's font set.
func (r *Renderer) Fonts() *Fonts { return r.fonts }

// Render rasterizes s. The result is premultiplied RGBA anchored at the
// origin. Hidden elements are skipped; locked elements are drawn.
// Render stops with ctx's error when ctx is canceled.
func (r *Renderer) Render(ctx context.Context, s *document.Scene, o Options) (*image.RGBA, error) {
	vp, err := o.viewport(s)
	if err != nil {
		return nil, err
	}
	p := &painter{
		r:   r,
		ctx: ctx,
		vp:  vp,
		out: image.NewRGBA(image.Rect(0, 0, vp.width, vp.height)),
	}
	defer p.close()

	if !o.Transparent {
		bg := s.Background()
		if bg == "" {
			bg = DefaultBackground
		}
		xdraw.Draw(p.out, p.out.Bounds(), image.NewUniform(nrgba(bg, 1)), image.Point{}, xdraw.Src)
	}
	for _, e := range s.Query() {
		if err := p.element(e, vp.root, 1); err != nil {
			return nil, err
		}
	}
	if err := p.flush(); err != nil {
		return nil, err
	}
	return p.out, nil
}

// painter holds the state of one Render call.
type painter struct {
	r   *Renderer
	ctx context.Context
	vp  viewport
	out *image.RGBA

	// dc accumulates a run of consecutive shapes; dirty reports whether
	// it holds anything not yet composited.
	dc    *gg.Context
	dirty bool
}

func (p *painter) close() {
	if p.dc != nil {
		_ = p.dc.Close()
	}
}

func (p *painter) element(e *document.Element, parent document.Matrix, opacity float64) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	if !e.Visible {
		return nil
	}
	m := parent.Multiply(e.Transform.Matrix())
	alpha := opacity * e.Appearance.Opacity
	if alpha <= 0 {
		return nil
	}

	if e.Kind == document.KindGroup {
		for _, c := range e.Children {
			if err := p.element(c, m, alpha); err != nil {
				return err
			}
		}
		return nil
	}

	if sh := e.Appearance.Shadow; sh != nil {
		if err := p.shadow(e, m, alpha, sh); err != nil {
			return err
		}
	}

	if e.Kind == document.KindShape {
		if p.dc == nil {
			p.dc = gg.NewContext(p.vp.width, p.vp.height)
		}
		p.dirty = true
		return drawShape(p.dc, e, m, alpha)
	}

	src, s2d, err := p.layer(e, m)
	if err != nil || src == nil {
		return err
	}
	return p.composite(src, s2d, alpha)
}

// layer renders a text or image element to its own raster and returns
// the transform from raster pixels to output pixels. A nil image means
// there is nothing to draw.
func (p *painter) layer(e *document.Element, m document.Matrix) (image.Image, document.Matrix, error) {
	switch e.Kind {
	case document.KindText:
		return p.r.textLayer(e, m)
	case document.KindImage:
		return p.r.imageLayer(p.ctx, e, m)
	}
	return nil, m, nil
}

// flush composites the pending shape run onto the output.
func (p *painter) flush() error {
	if !p.dirty {
		return nil
	}
	xdraw.Draw(p.out, p.out.Bounds(), p.dc.Image(), image.Point{}, xdraw.Over)
	p.dc.Clear()
	p.dirty = false
	return nil
}

// composite draws src onto the output through s2d at the given opacity.
func (p *painter) composite(src image.Image, s2d document.Matrix, alpha float64) error {
	if err := p.flush(); err != nil {
		return err
	}
	transform(p.out, src, s2d, alpha)
	return nil
}

// shadow draws the element's drop shadow beneath where the element will
// be drawn.
func (p *painter) shadow(e *document.Element, m document.Matrix, alpha float64, sh *document.Shadow) error {
	var silhouette image.Image
	if e.Kind == document.KindShape {
		dc := gg.NewContext(p.vp.width, p.vp.height)
		defer dc.Close()
		if err := drawShape(dc, e, m, 1); err != nil {
			return err
		}
		silhouette = dc.Image()
	} else {
		src, s2d, err := p.layer(e, m)
		if err != nil || src == nil {
			return err
		}
		tmp := image.NewRGBA(p.out.Bounds())
		transform(tmp, src, s2d, 1)
		silhouette = tmp
	}

	layer := filter.Shadow(filter.ToNRGBA(silhouette), nrgba(sh.Color, alpha), sh.Blur*p.vp.scale)
	off := image.Pt(int(math.Round(sh.OffsetX*p.vp.scale)), int(math.Round(sh.OffsetY*p.vp.scale)))
	if err := p.flush(); err != nil {
		return err
	}
	xdraw.Draw(p.out, layer.Bounds().Add(off), layer, image.Point{}, xdraw.Over)
	return nil
}

// drawShape fills and strokes a shape element with gg.
func drawShape(dc *gg.Context, e *document.Element, m document.Matrix, alpha float64) error {
	dc.Push()
	defer dc.Pop()
	dc.SetTransform(gg.Matrix(m))

	w, h := e.Width, e.Height
	outline := func() {
		switch e.Shape {
		case document.ShapeEllipse:
			dc.DrawEllipse(w/2, h/2, w/2, h/2)
		case document.ShapeTriangle:
			dc.MoveTo(w/2, 0)
			dc.LineTo(w, h)
			dc.LineTo(0, h)
			dc.ClosePath()
		case document.ShapeLine:
			dc.MoveTo(0, 0)
			dc.LineTo(w, h)
		default:
			dc.DrawRectangle(0, 0, w, h)
		}
	}

	app := e.Appearance
	fill, stroke, width := app.Fill, app.Stroke, app.StrokeWidth
	if e.Shape == document.ShapeLine {
		if stroke == "" {
			stroke = fill
		}
		fill = ""
		if width == 0 {
			width = 1
		}
	}

	if fill != "" {
		outline()
		setColor(dc, fill, alpha)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	if stroke != "" && width > 0 {
		outline()
		setColor(dc, stroke, alpha)
		dc.SetLineWidth(width)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// transform composites src onto dst through s2d, scaled by alpha.
// Downscaling uses Catmull-Rom, everything else bilinear.
func transform(dst *image.RGBA, src image.Image, s2d document.Matrix, alpha float64) {
	var opts *xdraw.Options
	if alpha < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha16{A: uint16(alpha*0xffff + 0.5)})}
	}
	var interp xdraw.Interpolator = xdraw.BiLinear
	if s2d.ScaleFactor() < 0.5 {
		interp = xdraw.CatmullRom
	}
	interp.Transform(dst, aff3(s2d), src, src.Bounds(), xdraw.Over, opts)
}

func setColor(dc *gg.Context, hex string, alpha float64) {
	c := gg.Hex(hex)
	dc.SetRGBA(c.R, c.G, c.B, c.A*alpha)
}

// nrgba parses a hex color and scales its alpha.
func nrgba(hex string, alpha float64) color.NRGBA {
	c := gg.Hex(hex)
	return color.NRGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: uint8(c.A*alpha*255 + 0.5),
	}
}

func aff3(m document.Matrix) f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}

func debugSkip(e *document.Element, reason string) {
	logging.Logger().Debug("render: skipped element", "id", e.ID, "kind", e.Kind, "reason", reason)
}
