package driver

import "github.com/san-kum/phrictl/internal/dynamo"

// Actuator models velocity-controlled joints whose velocity follows the
// command through a first-order lag of time constant Tau.
//
// The state holds the n joint positions followed by the n joint velocities.
type Actuator struct {
	n   int
	Tau float64
}

func NewActuator(joints int, tau float64) *Actuator {
	return &Actuator{n: joints, Tau: tau}
}

func (a *Actuator) StateDim() int   { return 2 * a.n }
func (a *Actuator) ControlDim() int { return a.n }

func (a *Actuator) Derive(x dynamo.State, u dynamo.Control, t float64, dx dynamo.State) {
	for i := 0; i < a.n; i++ {
		dx[i] = x[a.n+i]
		dx[a.n+i] = (u[i] - x[a.n+i]) / a.Tau
	}
}
