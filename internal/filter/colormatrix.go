package filter

import "image"

// ColorMatrix applies a row-major 4x5 color matrix to img in place.
// Channels are normalized to [0, 1] before the transform, so the bias
// column uses the same units:
//
//	[R']   [m00 m01 m02 m03 m04]   [R]
//	[G'] = [m05 m06 m07 m08 m09] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
func ColorMatrix(img *image.NRGBA, m *[20]float64) {
	if img == nil || m == nil || isIdentity(m) {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+3 < len(row); i += 4 {
			r := float64(row[i]) / 255
			g := float64(row[i+1]) / 255
			bl := float64(row[i+2]) / 255
			a := float64(row[i+3]) / 255
			row[i] = unit8(m[0]*r + m[1]*g + m[2]*bl + m[3]*a + m[4])
			row[i+1] = unit8(m[5]*r + m[6]*g + m[7]*bl + m[8]*a + m[9])
			row[i+2] = unit8(m[10]*r + m[11]*g + m[12]*bl + m[13]*a + m[14])
			row[i+3] = unit8(m[15]*r + m[16]*g + m[17]*bl + m[18]*a + m[19])
		}
	}
}

func isIdentity(m *[20]float64) bool {
	return *m == [20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// unit8 maps [0, 1] to a byte, clamping and rounding.
func unit8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// clampUint8 clamps a float32 to [0, 255] and rounds.
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
