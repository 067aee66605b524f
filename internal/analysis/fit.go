package analysis

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/phrictl/internal/sim"
)

// LinearFit is the least squares line y = Intercept + Slope*x.
type LinearFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	N         int
}

func FitLinear(xs, ys []float64) (LinearFit, error) {
	if len(xs) != len(ys) {
		return LinearFit{}, errors.Errorf("analysis: %d x values for %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return LinearFit{}, errors.Wrapf(ErrTooShort, "%d points", len(xs))
	}
	if stat.Variance(xs, nil) == 0 {
		return LinearFit{}, errors.Wrap(ErrDegenerate, "constant x")
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)
	if math.IsNaN(r2) {
		r2 = 1
	}
	return LinearFit{Slope: beta, Intercept: alpha, RSquared: r2, N: len(xs)}, nil
}

// ContactStiffness fits the measured force along axis (0 to 2) against the
// position along that axis, over the samples whose force magnitude on the
// axis exceeds minForce. Environments push back, so the stiffness is the
// negated slope.
func ContactStiffness(samples []sim.Sample, axis int, minForce float64) (float64, LinearFit, error) {
	if axis < 0 || axis > 2 {
		return 0, LinearFit{}, errors.Errorf("analysis: axis %d out of range", axis)
	}
	var xs, ys []float64
	for i := range samples {
		f := samples[i].Wrench[axis]
		if math.Abs(f) <= minForce {
			continue
		}
		p := samples[i].Position
		xs = append(xs, [3]float64{p.X, p.Y, p.Z}[axis])
		ys = append(ys, f)
	}
	fit, err := FitLinear(xs, ys)
	if err != nil {
		return 0, fit, errors.Wrap(err, "contact stiffness")
	}
	return -fit.Slope, fit, nil
}
