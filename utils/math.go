package utils

import (
	"math"
)

// POW raises x to a small integer power by repeated squaring, falling back to
// math.Pow outside [-8, 8]. Turbulence closures call it with fixed exponents.
func POW(x float64, p int) (y float64) {
	if p > 8 || p < -8 {
		return math.Pow(x, float64(p))
	}
	n := p
	if n < 0 {
		n = -n
	}
	y = 1
	for base := x; n > 0; n >>= 1 {
		if n&1 == 1 {
			y *= base
		}
		base *= base
	}
	if p < 0 {
		y = 1 / y
	}
	return
}

func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
