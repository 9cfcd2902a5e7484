package filter

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Blur returns a copy of src convolved with a Gaussian of the given radius
// in both directions. Pixels beyond the edge repeat the border.
func Blur(src *image.NRGBA, radius float64) *image.NRGBA {
	if radius <= 0 {
		return Clone(src)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Clone(src)
	}

	buf := premultiply(src)
	tmp := make([]float32, len(buf))
	kernel := cachedKernel(radius)
	convolve(buf, tmp, kernel, w, h, 4, 4*w)
	convolve(tmp, buf, kernel, h, w, 4*w, 4)

	dst := image.NewNRGBA(b)
	for y := 0; y < h; y++ {
		row := dst.Pix[dst.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			a := buf[i+3]
			if a <= 0 {
				continue
			}
			o := x * 4
			row[o] = clampUint8(buf[i] * 255 / a)
			row[o+1] = clampUint8(buf[i+1] * 255 / a)
			row[o+2] = clampUint8(buf[i+2] * 255 / a)
			row[o+3] = clampUint8(a)
		}
	}
	return dst
}

// convolve runs one separable pass over lines of count pixels. step is
// the distance in floats between neighbors on a line and next the distance
// between the first pixels of consecutive lines.
func convolve(src, dst, kernel []float32, count, lines, step, next int) {
	half := len(kernel) / 2
	for line := 0; line < lines; line++ {
		base := line * next
		for p := 0; p < count; p++ {
			var r, g, b, a float32
			for k, wt := range kernel {
				q := p + k - half
				if q < 0 {
					q = 0
				} else if q >= count {
					q = count - 1
				}
				i := base + q*step
				r += src[i] * wt
				g += src[i+1] * wt
				b += src[i+2] * wt
				a += src[i+3] * wt
			}
			o := base + p*step
			dst[o], dst[o+1], dst[o+2], dst[o+3] = r, g, b, a
		}
	}
}

// premultiply copies src into a dense premultiplied float buffer.
func premultiply(src *image.NRGBA) []float32 {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := make([]float32, w*h*4)
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			o, i := x*4, (y*w+x)*4
			a := float32(row[o+3])
			f := a / 255
			buf[i] = float32(row[o]) * f
			buf[i+1] = float32(row[o+1]) * f
			buf[i+2] = float32(row[o+2]) * f
			buf[i+3] = a
		}
	}
	return buf
}

// Clone copies img into a new NRGBA with the same bounds.
func Clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	if out.Stride == img.Stride && len(out.Pix) == len(img.Pix) {
		copy(out.Pix, img.Pix)
		return out
	}
	xdraw.Draw(out, out.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return out
}

// ToNRGBA converts any image to an NRGBA anchored at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return Clone(n)
	}
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
	return out
}
