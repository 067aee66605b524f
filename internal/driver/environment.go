package driver

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/phrictl/internal/spatial"
)

// Environment produces the wrench applied on the control point by its
// surroundings, expressed in the base frame.
type Environment interface {
	Wrench(t float64, pose *spatial.Pose, out *spatial.Wrench)
}

// FreeSpace applies no wrench.
type FreeSpace struct{}

func (FreeSpace) Wrench(_ float64, _ *spatial.Pose, out *spatial.Wrench) { out.Reset() }

// Wall is a linear spring plane. Points with Normal·p < Offset are inside
// the wall and pushed back along Normal.
type Wall struct {
	Normal    r3.Vector
	Offset    float64
	Stiffness float64
}

func NewWall(normal r3.Vector, offset, stiffness float64) *Wall {
	return &Wall{Normal: normal.Normalize(), Offset: offset, Stiffness: stiffness}
}

func (w *Wall) Wrench(_ float64, pose *spatial.Pose, out *spatial.Wrench) {
	out.Reset()
	if penetration := w.Offset - w.Normal.Dot(pose.Position); penetration > 0 {
		out.SetLinear(w.Normal.Mul(w.Stiffness * penetration))
	}
}

// Environments sums the wrenches of several environments.
type Environments []Environment

func (e Environments) Wrench(t float64, pose *spatial.Pose, out *spatial.Wrench) {
	out.Reset()
	var w spatial.Wrench
	for _, env := range e {
		env.Wrench(t, pose, &w)
		out.Add(&w)
	}
}
