package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/phrictl/internal/dynamo"
)

type oscillator struct{}

func (oscillator) Derive(x dynamo.State, u dynamo.Control, t float64, dx dynamo.State) {
	dx[0] = x[1]
	dx[1] = -x[0]
}

func (oscillator) StateDim() int   { return 2 }
func (oscillator) ControlDim() int { return 0 }

// lag is a first-order lag toward the control input.
type lag struct{ tau float64 }

func (l lag) Derive(x dynamo.State, u dynamo.Control, t float64, dx dynamo.State) {
	dx[0] = (u[0] - x[0]) / l.tau
}

func (lag) StateDim() int   { return 1 }
func (lag) ControlDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		integ.Step(oscillator{}, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestIntegratorsTrackFirstOrderLag(t *testing.T) {
	tests := []struct {
		name      string
		tolerance float64
	}{
		{"euler", 1e-2},
		{"rk4", 1e-6},
	}

	for _, tt := range tests {
		integ, err := New(tt.name)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		x := dynamo.State{0}
		u := dynamo.Control{1}
		sys := lag{tau: 0.1}
		for i := 0; i < 100; i++ {
			integ.Step(sys, x, u, float64(i)*0.001, 0.001)
		}
		expected := 1 - math.Exp(-1)
		if math.Abs(x[0]-expected) > tt.tolerance {
			t.Errorf("%s: expected %.6f, got %.6f", tt.name, expected, x[0])
		}
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("verlet"); !errors.Is(err, ErrUnknown) {
		t.Errorf("expected ErrUnknown, got %v", err)
	}
	if got := Names(); len(got) != 2 || got[0] != "euler" || got[1] != "rk4" {
		t.Errorf("unexpected names %v", got)
	}
}
