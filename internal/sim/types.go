package sim

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/phrictl/internal/spatial"
)

// Sample is the robot state recorded at the end of one cycle.
type Sample struct {
	Time          float64        `json:"time"`
	Position      r3.Vector      `json:"position"`
	Twist         spatial.Twist  `json:"twist"`
	Command       spatial.Twist  `json:"command"`
	Wrench        spatial.Wrench `json:"wrench"`
	ScalingFactor float64        `json:"scaling_factor"`
	Joints        []float64      `json:"joints"`
	JointCommand  []float64      `json:"joint_command"`
}

// Metric accumulates a figure of merit over a run.
type Metric interface {
	Name() string
	Observe(s *Sample)
	Value() float64
	Reset()
}

// Observer is notified after every cycle. The sample is reused between
// cycles and must be copied to be retained.
type Observer interface {
	OnStep(s *Sample)
}

// Scenario applies timed changes to the setup before each cycle.
type Scenario interface {
	Apply(t float64) error
}

type Config struct {
	Dt       float64
	Duration float64
	// Decimation records one sample every Decimation cycles.
	Decimation int
}

type Result struct {
	Samples []Sample
	Metrics map[string]float64
	Cycles  int
}
