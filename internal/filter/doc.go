// Package filter implements the pixel filters applied at render time:
// color matrices, separable Gaussian blur and drop-shadow silhouettes.
//
// Every filter works on *image.NRGBA, whose channels are straight
// (non-premultiplied) alpha. Blur converts to premultiplied values
// internally so transparent pixels do not bleed dark fringes.
package filter
