package trajectory

import (
	"math"

	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/polynomial"
)

const (
	DefaultVelocityTolerance     = 1e-6
	DefaultAccelerationTolerance = 1e-6
	DefaultMaxIterations         = 100
)

// Limits bounds the minimum-time search of a segment.
type Limits struct {
	VelocityTolerance     float64
	AccelerationTolerance float64
	MaxIterations         int
}

func DefaultLimits() Limits {
	return Limits{
		VelocityTolerance:     DefaultVelocityTolerance,
		AccelerationTolerance: DefaultAccelerationTolerance,
		MaxIterations:         DefaultMaxIterations,
	}
}

// minimumTime returns the shortest duration of the quintic joining from and
// to whose peak velocity and acceleration stay within vmax and amax.
//
// Starting from a unit duration, the duration is first scaled by the
// velocity overshoot until the peak velocity matches vmax, then grown by the
// square root of the acceleration overshoot until the peak acceleration is
// below amax.
func minimumTime(from, to polynomial.Point, vmax, amax float64, lim Limits) (float64, error) {
	from.X, to.X = 0, 1
	q := polynomial.NewQuintic(from, to)

	if q.MaxVelocity() == 0 {
		return 0, nil
	}

	for i := 0; ; i++ {
		v := q.MaxVelocity()
		if math.Abs(v-vmax) < lim.VelocityTolerance {
			break
		}
		if i >= lim.MaxIterations {
			return 0, errors.Wrapf(ErrConvergence, "velocity peak %g for limit %g after %d iterations", v, vmax, i)
		}
		q.To.X *= v / vmax
		q.Solve()
	}

	for i := 0; ; i++ {
		a := q.MaxAcceleration()
		if a-amax < lim.AccelerationTolerance {
			break
		}
		if i >= lim.MaxIterations {
			return 0, errors.Wrapf(ErrConvergence, "acceleration peak %g for limit %g after %d iterations", a, amax, i)
		}
		q.To.X *= math.Sqrt(a / amax)
		q.Solve()
	}

	return q.Duration(), nil
}
