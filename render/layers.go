// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/internal/filter"
	"github.com/gogpu/studio/internal/logging"
)

// textColor is used for text without a fill.
const textColor = "#000000"

// textLayer rasterizes a text element's box at the device density of m.
// Lines are laid out top to bottom, each centered vertically in a band of
// fontSize*lineHeight, and aligned horizontally inside the box.
func (r *Renderer) textLayer(e *document.Element, m document.Matrix) (image.Image, document.Matrix, error) {
	t := e.Text
	if t == nil || t.Content == "" {
		return nil, m, nil
	}
	d := m.ScaleFactor()
	pw, ph := int(math.Ceil(e.Width*d)), int(math.Ceil(e.Height*d))
	if pw <= 0 || ph <= 0 {
		debugSkip(e, "empty box")
		return nil, m, nil
	}
	if pw > MaxDimension || ph > MaxDimension {
		debugSkip(e, "box too large")
		return nil, m, nil
	}

	face, err := r.fonts.Face(t.FontSize * d)
	if err != nil {
		return nil, m, err
	}
	fill := e.Appearance.Fill
	if fill == "" {
		fill = textColor
	}

	dc := gg.NewContext(pw, ph)
	defer dc.Close()
	setColor(dc, fill, 1)
	dc.SetFont(face)

	r.fonts.mu.Lock()
	metrics := face.Metrics()
	band := t.FontSize * t.LineHeight * d
	lead := (band - (metrics.Ascent + metrics.Descent)) / 2
	for i, line := range t.Lines() {
		if line == "" {
			continue
		}
		x := 0.0
		switch t.Align {
		case document.AlignCenter:
			x = (float64(pw) - face.Advance(line)) / 2
		case document.AlignRight:
			x = float64(pw) - face.Advance(line)
		}
		dc.DrawString(line, x, float64(i)*band+lead+metrics.Ascent)
	}
	r.fonts.mu.Unlock()

	return dc.Image(), m.Multiply(document.Scale(1/d, 1/d)), nil
}

// imageLayer decodes an image element's source and applies its filter
// chain. A source that cannot be loaded is logged and skipped.
func (r *Renderer) imageLayer(ctx context.Context, e *document.Element, m document.Matrix) (image.Image, document.Matrix, error) {
	if e.Image == nil || e.Width <= 0 || e.Height <= 0 {
		debugSkip(e, "empty box")
		return nil, m, nil
	}
	src, err := r.images.get(ctx, e.Image.Ref)
	if err != nil {
		if ctx.Err() != nil {
			return nil, m, ctx.Err()
		}
		logging.Logger().Warn("render: image source unavailable", "id", e.ID, "ref", shortRef(e.Image.Ref), "err", err)
		return nil, m, nil
	}
	b := src.Bounds()
	if b.Empty() {
		debugSkip(e, "empty image")
		return nil, m, nil
	}

	var out image.Image = src
	if filters := e.Appearance.Filters.All(); len(filters) > 0 {
		out = applyFilters(src, filters, float64(b.Dx())/e.Width)
	}
	s2d := m.Multiply(document.Scale(e.Width/float64(b.Dx()), e.Height/float64(b.Dy())))
	return out, s2d, nil
}

// applyFilters runs a filter chain in order on a copy of src. density
// converts document units to source pixels for blur radii.
func applyFilters(src *image.NRGBA, filters []document.Filter, density float64) *image.NRGBA {
	img := filter.Clone(src)
	for _, f := range filters {
		switch f.Kind {
		case document.FilterBlur:
			img = filter.Blur(img, f.Radius*density)
		case document.FilterAdjust:
			var m [20]float64
			if copy(m[:], f.Matrix) == len(m) {
				filter.ColorMatrix(img, &m)
			}
		}
	}
	return img
}
