package constraint

import "github.com/pkg/errors"

var (
	// ErrThresholds indicates an activation threshold not strictly above its deactivation threshold.
	ErrThresholds = errors.New("constraint: activation threshold must exceed deactivation threshold")

	// ErrDimensionMismatch indicates per-joint limits not matching the robot's joint count.
	ErrDimensionMismatch = errors.New("constraint: limits do not match joint count")
)
