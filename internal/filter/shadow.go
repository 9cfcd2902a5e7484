package filter

import (
	"image"
	"image/color"
)

// Shadow returns a drop-shadow layer for src: every pixel takes the color
// c with alpha equal to c's alpha times src's alpha, blurred by radius.
// The layer has src's bounds and is not offset; callers composite it
// beneath the source at the shadow offset. Pixels beyond the edge count
// as transparent.
func Shadow(src *image.NRGBA, c color.NRGBA, radius float64) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	alpha := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			alpha[y*w+x] = float32(row[x*4+3]) / 255
		}
	}
	if radius > 0 {
		alpha = blurAlpha(alpha, w, h, cachedKernel(radius))
	}

	dst := image.NewNRGBA(b)
	base := float32(c.A)
	for y := 0; y < h; y++ {
		row := dst.Pix[dst.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			a := alpha[y*w+x] * base
			if a <= 0 {
				continue
			}
			o := x * 4
			row[o], row[o+1], row[o+2] = c.R, c.G, c.B
			row[o+3] = clampUint8(a)
		}
	}
	return dst
}

// blurAlpha runs a separable blur over a single-channel buffer with zero
// padding outside the buffer.
func blurAlpha(src []float32, w, h int, kernel []float32) []float32 {
	half := len(kernel) / 2
	tmp := make([]float32, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float32
			for k, wt := range kernel {
				if kx := x + k - half; kx >= 0 && kx < w {
					sum += src[y*w+kx] * wt
				}
			}
			tmp[y*w+x] = sum
		}
	}
	dst := make([]float32, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float32
			for k, wt := range kernel {
				if ky := y + k - half; ky >= 0 && ky < h {
					sum += tmp[ky*w+x] * wt
				}
			}
			dst[y*w+x] = sum
		}
	}
	return dst
}
