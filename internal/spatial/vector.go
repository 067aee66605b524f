package spatial

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vector6 is a 6-DoF Cartesian quantity: linear part in [0:3], angular part in [3:6].
type Vector6 [6]float64

// Twist is a Cartesian velocity (m/s, rad/s).
type Twist = Vector6

// Wrench is a Cartesian force and torque (N, Nm).
type Wrench = Vector6

func NewVector6(linear, angular r3.Vector) Vector6 {
	return Vector6{linear.X, linear.Y, linear.Z, angular.X, angular.Y, angular.Z}
}

func (v *Vector6) Linear() r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func (v *Vector6) Angular() r3.Vector {
	return r3.Vector{X: v[3], Y: v[4], Z: v[5]}
}

func (v *Vector6) SetLinear(l r3.Vector) {
	v[0], v[1], v[2] = l.X, l.Y, l.Z
}

func (v *Vector6) SetAngular(a r3.Vector) {
	v[3], v[4], v[5] = a.X, a.Y, a.Z
}

func (v *Vector6) Reset() {
	*v = Vector6{}
}

// Add accumulates other into v.
func (v *Vector6) Add(other *Vector6) {
	for i := range v {
		v[i] += other[i]
	}
}

func (v *Vector6) Scale(factor float64) {
	for i := range v {
		v[i] *= factor
	}
}

func (v *Vector6) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func (v Vector6) IsZero() bool {
	return v == Vector6{}
}

func (v Vector6) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether every component of v is within tol of other.
func (v Vector6) ApproxEqual(other Vector6, tol float64) bool {
	for i := range v {
		if math.Abs(v[i]-other[i]) > tol {
			return false
		}
	}
	return true
}
