package spatial

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Rotation is a row-major 3x3 rotation matrix.
type Rotation [3][3]float64

func IdentityRotation() Rotation {
	return Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// RotationZ returns a rotation of theta radians about the z axis.
func RotationZ(theta float64) Rotation {
	s, c := math.Sincos(theta)
	return Rotation{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

func (r *Rotation) Apply(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		Y: r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		Z: r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

// ApplyInverse rotates v by the transpose of r.
func (r *Rotation) ApplyInverse(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r[0][0]*v.X + r[1][0]*v.Y + r[2][0]*v.Z,
		Y: r[0][1]*v.X + r[1][1]*v.Y + r[2][1]*v.Z,
		Z: r[0][2]*v.X + r[1][2]*v.Y + r[2][2]*v.Z,
	}
}

// Mul returns r·other.
func (r *Rotation) Mul(other *Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += r[i][k] * other[k][j]
			}
		}
	}
	return out
}

func (r *Rotation) Transpose() Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = r[j][i]
		}
	}
	return out
}

// Pose is the position and orientation of a frame relative to the base.
type Pose struct {
	Position    r3.Vector
	Orientation Rotation
}

func IdentityPose() Pose {
	return Pose{Orientation: IdentityRotation()}
}

// ToBase maps a point expressed in the pose's local frame to the base frame.
func (p *Pose) ToBase(local r3.Vector) r3.Vector {
	return p.Orientation.Apply(local).Add(p.Position)
}

// ToLocal maps a point expressed in the base frame to the pose's local frame.
func (p *Pose) ToLocal(base r3.Vector) r3.Vector {
	return p.Orientation.ApplyInverse(base.Sub(p.Position))
}

// Error returns the 6-D error from p to target expressed in the base frame:
// translation difference and the small-angle rotation vector of
// target·pᵀ.
func (p *Pose) Error(target *Pose) Vector6 {
	ct := p.Orientation.Transpose()
	re := target.Orientation.Mul(&ct)
	angular := r3.Vector{
		X: 0.5 * (re[2][1] - re[1][2]),
		Y: 0.5 * (re[0][2] - re[2][0]),
		Z: 0.5 * (re[1][0] - re[0][1]),
	}
	return NewVector6(target.Position.Sub(p.Position), angular)
}

// Origin returns the origin of the pose's frame expressed in frame.
func (p *Pose) Origin(frame Frame) r3.Vector {
	if frame == ControlPoint {
		return r3.Vector{}
	}
	return p.Position
}

// Express converts v, given in frame from, into frame to.
func (p *Pose) Express(v r3.Vector, from, to Frame) r3.Vector {
	switch {
	case from == to:
		return v
	case from == ControlPoint:
		return p.ToBase(v)
	default:
		return p.ToLocal(v)
	}
}

// FillTransformation writes the homogeneous 4x4 transform of p into dst.
func (p *Pose) FillTransformation(dst *mat.Dense) {
	dst.Zero()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dst.Set(i, j, p.Orientation[i][j])
		}
	}
	dst.Set(0, 3, p.Position.X)
	dst.Set(1, 3, p.Position.Y)
	dst.Set(2, 3, p.Position.Z)
	dst.Set(3, 3, 1)
}

// FillSpatialTransformation writes the 6x6 block-diagonal rotation
// diag(R, R) of p into dst. It maps control point quantities to the base
// frame; its transpose maps the other way.
func (p *Pose) FillSpatialTransformation(dst *mat.Dense) {
	dst.Zero()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dst.Set(i, j, p.Orientation[i][j])
			dst.Set(i+3, j+3, p.Orientation[i][j])
		}
	}
}

// ToControlPoint rotates v, given in the base frame, into the control point
// frame using the spatial transformation t: v ← tᵀ·v.
func ToControlPoint(t mat.Matrix, v *Vector6) {
	var out Vector6
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			out[i] += t.At(j, i) * v[j]
		}
	}
	*v = out
}

// ToBase rotates v, given in the control point frame, into the base frame: v ← t·v.
func ToBase(t mat.Matrix, v *Vector6) {
	var out Vector6
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			out[i] += t.At(i, j) * v[j]
		}
	}
	*v = out
}
