package model

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/spatial"
)

// Kinematics computes the control point pose and Jacobian of a serial robot.
type Kinematics interface {
	Name() string
	JointCount() int
	// Forward writes the control point pose at joint positions q.
	Forward(q []float64, pose *spatial.Pose)
	// Jacobian writes the 6 x n Jacobian at q, expressed in the base frame.
	Jacobian(q []float64, jac *mat.Dense)
}

// Gantry is a Cartesian robot: three prismatic axes along x, y and z, then
// a revolute joint about z carrying the control point.
type Gantry struct{}

func NewGantry() *Gantry { return &Gantry{} }

func (*Gantry) Name() string    { return "gantry" }
func (*Gantry) JointCount() int { return 4 }

func (*Gantry) Forward(q []float64, pose *spatial.Pose) {
	pose.Position = r3.Vector{X: q[0], Y: q[1], Z: q[2]}
	pose.Orientation = spatial.RotationZ(q[3])
}

func (*Gantry) Jacobian(q []float64, jac *mat.Dense) {
	jac.Zero()
	jac.Set(0, 0, 1)
	jac.Set(1, 1, 1)
	jac.Set(2, 2, 1)
	jac.Set(5, 3, 1)
}

// PlanarArm is a chain of revolute joints about z with links along x, moving
// the control point in the xy plane.
type PlanarArm struct {
	links []float64
	// cumulative joint angles
	theta []float64
}

func NewPlanarArm(links ...float64) (*PlanarArm, error) {
	if len(links) == 0 {
		return nil, errors.Wrap(ErrInvalidLinks, "no links")
	}
	for i, l := range links {
		if !(l > 0) {
			return nil, errors.Wrapf(ErrInvalidLinks, "link %d has length %g", i, l)
		}
	}
	return &PlanarArm{links: links, theta: make([]float64, len(links))}, nil
}

func (*PlanarArm) Name() string       { return "planar_arm" }
func (a *PlanarArm) JointCount() int  { return len(a.links) }
func (a *PlanarArm) Links() []float64 { return a.links }

func (a *PlanarArm) angles(q []float64) {
	sum := 0.0
	for i := range a.links {
		sum += q[i]
		a.theta[i] = sum
	}
}

func (a *PlanarArm) Forward(q []float64, pose *spatial.Pose) {
	a.angles(q)
	var p r3.Vector
	for i, l := range a.links {
		p.X += l * math.Cos(a.theta[i])
		p.Y += l * math.Sin(a.theta[i])
	}
	pose.Position = p
	pose.Orientation = spatial.RotationZ(a.theta[len(a.theta)-1])
}

func (a *PlanarArm) Jacobian(q []float64, jac *mat.Dense) {
	a.angles(q)
	jac.Zero()
	n := len(a.links)
	// Column j sums the contributions of links j..n-1.
	var x, y float64
	for j := n - 1; j >= 0; j-- {
		x -= a.links[j] * math.Sin(a.theta[j])
		y += a.links[j] * math.Cos(a.theta[j])
		jac.Set(0, j, x)
		jac.Set(1, j, y)
		jac.Set(5, j, 1)
	}
}

// NewKinematics builds kinematics by name. Links are only used by the
// planar arm.
func NewKinematics(name string, links []float64) (Kinematics, error) {
	switch name {
	case "gantry":
		return NewGantry(), nil
	case "planar_arm":
		return NewPlanarArm(links...)
	}
	return nil, errors.Wrapf(ErrUnknownKinematics, "%q", name)
}
