package polynomial

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

const (
	leadingEps   = 1e-12
	imaginaryEps = 1e-9
)

// RealRoots returns the real roots of the polynomial whose coefficients are
// given from the highest degree down. Negligible leading coefficients are
// dropped first; the remaining roots are the eigenvalues of the companion
// matrix.
func RealRoots(coeffs ...float64) []float64 {
	scale := 0.0
	for _, c := range coeffs {
		scale = math.Max(scale, math.Abs(c))
	}
	if scale == 0 {
		return nil
	}
	for len(coeffs) > 0 && math.Abs(coeffs[0]) <= leadingEps*scale {
		coeffs = coeffs[1:]
	}

	switch len(coeffs) {
	case 0, 1:
		return nil
	case 2:
		return []float64{-coeffs[1] / coeffs[0]}
	case 3:
		return quadraticRoots(coeffs[0], coeffs[1], coeffs[2])
	}

	n := len(coeffs) - 1
	companion := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		companion.Set(0, j, -coeffs[j+1]/coeffs[0])
	}
	for i := 1; i < n; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil
	}

	var roots []float64
	for _, v := range eig.Values(nil) {
		if math.Abs(imag(v)) <= imaginaryEps*math.Max(1, cmplx.Abs(v)) {
			roots = append(roots, real(v))
		}
	}
	return roots
}

func quadraticRoots(a, b, c float64) []float64 {
	disc := b*b - 4*a*c
	switch {
	case disc < 0:
		return nil
	case disc == 0:
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(disc)
	// numerically stable form
	q := -0.5 * (b + math.Copysign(sq, b))
	return []float64{q / a, c / q}
}
