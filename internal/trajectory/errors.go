package trajectory

import "github.com/pkg/errors"

var (
	// ErrConvergence is returned when the minimum-time search exceeds its
	// iteration budget, typically because a boundary velocity or
	// acceleration already violates the limits.
	ErrConvergence = errors.New("trajectory: minimum time search did not converge")

	ErrTooFewPoints      = errors.New("trajectory: at least two points are required")
	ErrInvalidLimits     = errors.New("trajectory: limits must be positive")
	ErrInvalidDuration   = errors.New("trajectory: duration must not be negative")
	ErrInvalidSampleTime = errors.New("trajectory: sample time must be positive")
	ErrInvalidTracking   = errors.New("trajectory: invalid error tracking parameters")
)
