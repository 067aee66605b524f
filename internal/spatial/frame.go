package spatial

import (
	"strings"

	"github.com/pkg/errors"
)

// Frame identifies the reference frame a quantity is expressed in.
type Frame int

const (
	// ControlPoint is the frame attached to the robot's control point (TCP).
	ControlPoint Frame = iota
	// Base is the robot's base frame.
	Base
)

func (f Frame) String() string {
	switch f {
	case ControlPoint:
		return "control_point"
	case Base:
		return "base"
	default:
		return "unknown"
	}
}

// ParseFrame converts a configuration string to a Frame. An empty string
// selects the control point.
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(s) {
	case "", "control_point", "tcp":
		return ControlPoint, nil
	case "base", "world":
		return Base, nil
	default:
		return ControlPoint, errors.Errorf("spatial: unknown frame %q", s)
	}
}
