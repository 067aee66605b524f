package robot

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	r := New("arm", 7)

	if r.Name() != "arm" {
		t.Errorf("expected name arm, got %s", r.Name())
	}
	if r.JointCount() != 7 {
		t.Errorf("expected 7 joints, got %d", r.JointCount())
	}

	vectors := map[string][]float64{
		"position":       r.Joints.State.Position,
		"velocity":       r.Joints.State.Velocity,
		"force":          r.Joints.State.Force,
		"command":        r.Joints.Command.Velocity,
		"damping":        r.Control.Joints.Damping,
		"total_velocity": r.Control.Joints.TotalVelocity,
	}
	for name, v := range vectors {
		if len(v) != 7 {
			t.Errorf("%s: expected length 7, got %d", name, len(v))
		}
	}

	rows, cols := r.Control.Jacobian.Dims()
	if rows != 6 || cols != 7 {
		t.Errorf("expected 6x7 jacobian, got %dx%d", rows, cols)
	}
	rows, cols = r.Control.JacobianInverse.Dims()
	if rows != 7 || cols != 6 {
		t.Errorf("expected 7x6 jacobian inverse, got %dx%d", rows, cols)
	}

	if r.Control.ScalingFactor != 1 {
		t.Errorf("expected scaling factor 1, got %f", r.Control.ScalingFactor)
	}
	if !math.IsInf(r.Control.Task.Damping[0], 1) {
		t.Error("task damping should default to +Inf")
	}
	for i := 0; i < 6; i++ {
		if r.Control.SpatialTransformation.At(i, i) != 1 {
			t.Errorf("spatial transformation not identity at %d", i)
		}
	}
}

func TestSetIdentityKinematics(t *testing.T) {
	r := New("gantry", 3)
	r.SetIdentityKinematics()

	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if got := r.Control.Jacobian.At(i, j); got != want {
				t.Errorf("J(%d,%d) = %f, want %f", i, j, got, want)
			}
		}
	}
}
