package constraint

import (
	"math"

	"github.com/san-kum/phrictl/internal/robot"
)

// Constraint produces a velocity scaling factor each cycle. A value of 1
// leaves the command untouched, 0 stops the robot.
type Constraint interface {
	SetRobot(r *robot.Robot)
	Compute() float64
}

// minDenominator guards ratios against division by a vanishing magnitude.
const minDenominator = 1e-12

type base struct {
	robot *robot.Robot
}

func (b *base) SetRobot(r *robot.Robot) { b.robot = r }

// ratio returns min(1, limit/value), or 1 when value is negligible.
func ratio(limit, value float64) float64 {
	value = math.Abs(value)
	if value < minDenominator {
		return 1
	}
	return math.Min(1, limit/value)
}

// Default never limits the motion. The safety controller registers one so
// the reduced factor is at most 1.
type Default struct{ base }

func NewDefault() *Default { return &Default{} }

func (*Default) Compute() float64 { return 1 }

// Func adapts a function to the Constraint interface.
type Func struct {
	base
	fn func(r *robot.Robot) float64
}

func NewFunc(fn func(r *robot.Robot) float64) *Func {
	return &Func{fn: fn}
}

func (c *Func) Compute() float64 { return c.fn(c.robot) }
