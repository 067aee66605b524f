package dynamo

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidState indicates a state vector holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates mismatched state or control dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// CycleError wraps an error raised during one control cycle.
type CycleError struct {
	Cycle   int
	Time    float64
	Wrapped error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle %d (t=%.4f): %v", e.Cycle, e.Time, e.Wrapped)
}

func (e *CycleError) Unwrap() error {
	return e.Wrapped
}
