// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render rasterizes a document.Scene.
//
// Vector shapes and text are drawn with gg's software rasterizer. Runs of
// consecutive shapes share one gg context; text, images and shadows are
// rendered into their own layers and composited onto the output with
// golang.org/x/image/draw, which applies the element's affine transform
// and opacity in one pass.
//
// # Coordinates
//
// The output maps document units to pixels through a root transform:
// the scale multiplier, optionally preceded by a translation to a region
// of interest. Each element contributes T(x,y)·R(rotation)·S(sx,sy) and
// group children compose with their group.
//
// # Images
//
// Image elements reference their pixels by an opaque string resolved by
// a Loader. Decoded images are cached; the element's filter chain (blur,
// color adjustment) is applied to a copy on every render, so the source
// is never modified.
package render
