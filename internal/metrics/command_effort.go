package metrics

import (
	"math"

	"github.com/san-kum/phrictl/internal/sim"
)

// CommandEffort is the mean norm of the control point velocity command.
type CommandEffort struct {
	name    string
	sum     float64
	samples int
}

func NewCommandEffort() *CommandEffort {
	return &CommandEffort{
		name: "command_effort",
	}
}

func (c *CommandEffort) Name() string {
	return c.name
}

func (c *CommandEffort) Observe(s *sim.Sample) {
	c.sum += s.Command.Norm()
	c.samples++
}

func (c *CommandEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *CommandEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// JointEffort is the mean sum of absolute joint velocity commands.
type JointEffort struct {
	sum     float64
	samples int
}

func NewJointEffort() *JointEffort { return &JointEffort{} }

func (j *JointEffort) Name() string { return "joint_effort" }

func (j *JointEffort) Observe(s *sim.Sample) {
	for _, v := range s.JointCommand {
		j.sum += math.Abs(v)
	}
	j.samples++
}

func (j *JointEffort) Value() float64 {
	if j.samples == 0 {
		return 0
	}
	return j.sum / float64(j.samples)
}

func (j *JointEffort) Reset() {
	j.sum = 0
	j.samples = 0
}
