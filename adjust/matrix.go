// Package adjust builds the hue, saturation and brightness color matrix
// used by image elements and attaches it to their filter chain.
//
// A matrix is 4x5, row-major, operating on straight-alpha channels in
// [0, 1]:
//
//	[R']   [m00 m01 m02 m03 m04]   [R]
//	[G'] = [m05 m06 m07 m08 m09] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// The fifth column is a bias in the same [0, 1] units, which is the form
// SVG's feColorMatrix expects.
package adjust

import "math"

// Luminance weights applied by hue rotation and saturation.
const (
	LumR = 0.213
	LumG = 0.715
	LumB = 0.072
)

// Parameter ranges.
const (
	MaxHue        = 180.0
	MaxSaturation = 100.0
	MaxBrightness = 100.0
)

// Matrix is a row-major 4x5 color matrix.
type Matrix [20]float64

// Identity returns the matrix that leaves every color unchanged.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Then returns the matrix that applies m first and next second.
func (m Matrix) Then(next Matrix) Matrix {
	var r Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += next[row*5+k] * m[k*5+col]
			}
			if col == 4 {
				sum += next[row*5+4]
			}
			r[row*5+col] = sum
		}
	}
	return r
}

// Transform applies m to one straight-alpha color. Results are not clamped.
func (m Matrix) Transform(r, g, b, a float64) (float64, float64, float64, float64) {
	return m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4],
		m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9],
		m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14],
		m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
}

// Slice returns the coefficients as a new slice.
func (m Matrix) Slice() []float64 {
	return append([]float64(nil), m[:]...)
}

// FromSlice copies 20 coefficients into a Matrix.
func FromSlice(s []float64) (Matrix, bool) {
	var m Matrix
	if len(s) != len(m) {
		return m, false
	}
	copy(m[:], s)
	return m, true
}

// HueRotate returns the luminance-preserving hue rotation by degrees.
func HueRotate(degrees float64) Matrix {
	if degrees == 0 {
		return Identity()
	}
	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix{
		LumR + cos*(1-LumR) - sin*LumR, LumG - cos*LumG - sin*LumG, LumB - cos*LumB + sin*(1-LumB), 0, 0,
		LumR - cos*LumR + sin*0.143, LumG + cos*(1-LumG) + sin*0.140, LumB - cos*LumB - sin*0.283, 0, 0,
		LumR - cos*LumR - sin*(1-LumR), LumG - cos*LumG + sin*LumG, LumB + cos*(1-LumB) + sin*LumB, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Saturate blends between the luminance matrix (s = 0) and the identity
// (s = 1). Values above 1 oversaturate.
func Saturate(s float64) Matrix {
	if s == 1 {
		return Identity()
	}
	inv := 1 - s
	return Matrix{
		LumR*inv + s, LumG * inv, LumB * inv, 0, 0,
		LumR * inv, LumG*inv + s, LumB * inv, 0, 0,
		LumR * inv, LumG * inv, LumB*inv + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brighten moves colors toward white for b > 0 and toward black for
// b < 0; b is in [-1, 1]. Darkening is a pure multiply, lightening a
// multiply plus offset.
func Brighten(b float64) Matrix {
	if b == 0 {
		return Identity()
	}
	scale, offset := 1+b, 0.0
	if b > 0 {
		scale, offset = 1-b, b
	}
	return Matrix{
		scale, 0, 0, 0, offset,
		0, scale, 0, 0, offset,
		0, 0, scale, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// BuildMatrix combines hue rotation (degrees, [-180, 180]), saturation
// and brightness (percent, [-100, 100]) into one matrix. Out-of-range
// values are clamped. BuildMatrix(0, 0, 0) is exactly Identity and
// saturation -100 reduces the color rows to the luminance weights.
func BuildMatrix(hue, saturation, brightness float64) Matrix {
	hue = clamp(hue, MaxHue)
	saturation = clamp(saturation, MaxSaturation)
	brightness = clamp(brightness, MaxBrightness)

	m := HueRotate(hue)
	if saturation != 0 {
		m = m.Then(Saturate(1 + saturation/100))
	}
	if brightness != 0 {
		m = m.Then(Brighten(brightness / 100))
	}
	return m
}

func clamp(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-limit, math.Min(limit, v))
}
