package generator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/robot"
)

// JointVelocityProxy forwards a joint velocity vector set by external code.
type JointVelocityProxy struct {
	jointVelocityBase
	target []float64
	fn     func(out []float64)
}

func NewJointVelocityProxy(target []float64) *JointVelocityProxy {
	g := &JointVelocityProxy{target: target}
	g.self = g
	return g
}

func NewJointVelocityProxyFunc(fn func(out []float64)) *JointVelocityProxy {
	g := &JointVelocityProxy{fn: fn}
	g.self = g
	return g
}

func (g *JointVelocityProxy) Target() []float64 { return g.target }

func (g *JointVelocityProxy) update(out []float64) {
	if g.fn != nil {
		g.fn(out)
		return
	}
	copy(out, g.target)
}

// TorqueProxy forwards a joint torque vector set by external code.
type TorqueProxy struct {
	jointTorqueBase
	target []float64
	fn     func(out []float64)
}

func NewTorqueProxy(target []float64) *TorqueProxy {
	g := &TorqueProxy{target: target}
	g.self = g
	return g
}

func NewTorqueProxyFunc(fn func(out []float64)) *TorqueProxy {
	g := &TorqueProxy{fn: fn}
	g.self = g
	return g
}

func (g *TorqueProxy) Target() []float64 { return g.target }

func (g *TorqueProxy) update(out []float64) {
	if g.fn != nil {
		g.fn(out)
		return
	}
	copy(out, g.target)
}

// NullSpaceMotion projects a joint velocity into the null space of the
// Jacobian, (I - J⁺J)·q̇, so it does not move the control point.
type NullSpaceMotion struct {
	jointVelocityBase
	target []float64

	projector *mat.Dense
	jj        *mat.Dense
	in, out   *mat.VecDense
}

func NewNullSpaceMotion(target []float64) *NullSpaceMotion {
	g := &NullSpaceMotion{target: target}
	g.self = g
	return g
}

func (g *NullSpaceMotion) Target() []float64 { return g.target }

// SetRobot binds the robot and allocates the projection buffers.
func (g *NullSpaceMotion) SetRobot(r *robot.Robot) {
	g.joint.SetRobot(r)
	n := r.JointCount()
	g.projector = mat.NewDense(n, n, nil)
	g.jj = mat.NewDense(n, n, nil)
	g.in = mat.NewVecDense(n, make([]float64, n))
	g.out = mat.NewVecDense(n, g.output)
}

func (g *NullSpaceMotion) update(out []float64) {
	if g.robot == nil {
		return
	}
	n := len(out)
	g.jj.Mul(g.robot.Control.JacobianInverse, g.robot.Control.Jacobian)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := -g.jj.At(i, j)
			if i == j {
				v++
			}
			g.projector.Set(i, j, v)
		}
		if i < len(g.target) {
			g.in.SetVec(i, g.target[i])
		} else {
			g.in.SetVec(i, 0)
		}
	}
	g.out.MulVec(g.projector, g.in)
}
