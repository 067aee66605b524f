package generator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/spatial"
)

// Mass produces the inertial force M·(a_target - a) at the control point.
type Mass struct {
	forceBase
	mass   *mat.Dense
	target *spatial.Twist
}

// NewMass uses the 6x6 mass matrix and target acceleration handles. The
// target and the measured task acceleration are in the control point frame.
func NewMass(mass *mat.Dense, targetAcceleration *spatial.Twist) *Mass {
	g := &Mass{mass: mass, target: targetAcceleration}
	g.forceBase = newForceBase(g, spatial.ControlPoint)
	return g
}

func (g *Mass) update(out *spatial.Wrench) {
	if g.robot == nil {
		return
	}
	var e spatial.Vector6
	current := &g.robot.Task.State.Acceleration
	for i := range e {
		e[i] = g.target[i] - current[i]
	}
	mulMatVec6(g.mass, &e, out)
}

// Stiffness produces the spring force K·(x_target - x) between the control
// point and a target pose, both expressed in the base frame.
type Stiffness struct {
	forceBase
	stiffness *mat.Dense
	target    *spatial.Pose
}

func NewStiffness(stiffness *mat.Dense, target *spatial.Pose) *Stiffness {
	g := &Stiffness{stiffness: stiffness, target: target}
	g.forceBase = newForceBase(g, spatial.Base)
	return g
}

func (g *Stiffness) update(out *spatial.Wrench) {
	if g.robot == nil {
		return
	}
	e := g.robot.Task.State.Pose.Error(g.target)
	mulMatVec6(g.stiffness, &e, out)
}

// mulMatVec6 writes m·v into out for a 6x6 m without allocating.
func mulMatVec6(m mat.Matrix, v, out *spatial.Vector6) {
	for i := 0; i < 6; i++ {
		sum := 0.0
		for j := 0; j < 6; j++ {
			sum += m.At(i, j) * v[j]
		}
		out[i] = sum
	}
}
