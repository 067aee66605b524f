package dynamo

import (
	"math"
)

// State is the integrated state of a simulated actuator.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Control is the input applied over one integration step, typically the
// joint velocity command.
type Control []float64

// System is an ODE dX/dt = f(X, u, t). Derive writes into dx, which has the
// length of x.
type System interface {
	Derive(x State, u Control, t float64, dx State)
	StateDim() int
	ControlDim() int
}

// Integrator advances x in place by dt.
type Integrator interface {
	Step(sys System, x State, u Control, t, dt float64)
}
