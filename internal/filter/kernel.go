package filter

import (
	"math"

	"github.com/gogpu/studio/internal/cache"
)

// GaussianKernel generates a normalized 1D Gaussian kernel. The radius is
// used as sigma and the kernel covers three standard deviations, so its
// size is 2*ceil(3*radius)+1. A radius <= 0 yields the identity [1].
func GaussianKernel(radius float64) []float32 {
	if radius <= 0 {
		return []float32{1}
	}
	half := KernelRadius(radius)
	kernel := make([]float32, 2*half+1)
	twoSigmaSq := 2 * radius * radius
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(v)
		sum += v
	}
	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// KernelRadius returns how many pixels a blur of the given radius reaches
// beyond the source on each side.
func KernelRadius(radius float64) int {
	if radius <= 0 {
		return 0
	}
	return int(math.Ceil(radius * 3))
}

// kernels memoizes kernels by radius quantized to 0.01px.
var kernels = cache.New[int, []float32](64)

func cachedKernel(radius float64) []float32 {
	k, _ := kernels.GetOrCreate(int(radius*100), func() ([]float32, error) {
		return GaussianKernel(radius), nil
	})
	return k
}
