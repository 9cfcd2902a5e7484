// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/studio/document"
)

// MaxDimension bounds the width and height of an output raster.
const MaxDimension = 16384

// Errors returned by Render.
var (
	ErrBadScale    = errors.New("render: scale must be positive and finite")
	ErrEmptyRegion = errors.New("render: region is empty")
	ErrTooLarge    = errors.New("render: output exceeds maximum dimension")
)

// Options control one rasterization.
type Options struct {
	// Scale multiplies output pixel dimensions relative to the canvas.
	// Zero means 1.
	Scale float64

	// Transparent leaves the background unpainted.
	Transparent bool

	// Region renders only this rectangle of the canvas, in document units.
	Region *document.Rect
}

// viewport is the resolved output geometry of one render.
type viewport struct {
	width, height int
	root          document.Matrix
	scale         float64
}

func (o Options) viewport(s *document.Scene) (viewport, error) {
	scale := o.Scale
	if scale == 0 {
		scale = 1
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return viewport{}, ErrBadScale
	}

	cw, ch := s.Size()
	area := document.NewRect(0, 0, cw, ch)
	if o.Region != nil {
		area = *o.Region
		if area.IsEmpty() || area.Width() == 0 || area.Height() == 0 {
			return viewport{}, ErrEmptyRegion
		}
	}

	w := int(math.Round(area.Width() * scale))
	h := int(math.Round(area.Height() * scale))
	if w > MaxDimension || h > MaxDimension {
		return viewport{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return viewport{
		width:  max(w, 1),
		height: max(h, 1),
		root:   document.Scale(scale, scale).Multiply(document.Translate(-area.MinX, -area.MinY)),
		scale:  scale,
	}, nil
}

// Size returns the pixel dimensions Render would produce.
func Size(s *document.Scene, o Options) (width, height int, err error) {
	vp, err := o.viewport(s)
	if err != nil {
		return 0, 0, err
	}
	return vp.width, vp.height, nil
}
