package constraint

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/interpolator"
	"github.com/san-kum/phrictl/internal/registry"
	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/spatial"
)

// SeparationDistance adapts an inner constraint to the distance between
// the control point and the closest registered object. Each cycle the
// distance is fed to the interpolator, whose output is expected to be a
// parameter of the inner constraint.
type SeparationDistance struct {
	base
	inner        Constraint
	interpolator interpolator.Interpolator
	objects      *registry.Ordered[*r3.Vector]
	frame        spatial.Frame
	distance     float64
}

// NewSeparationDistance binds the interpolator input to the measured
// separation distance. Object positions are expressed in frame.
func NewSeparationDistance(inner Constraint, interp interpolator.Interpolator, frame spatial.Frame) *SeparationDistance {
	c := &SeparationDistance{
		inner:        inner,
		interpolator: interp,
		objects:      registry.New[*r3.Vector](),
		frame:        frame,
		distance:     math.Inf(1),
	}
	interp.SetInput(&c.distance)
	return c
}

// SetRobot binds the robot to this constraint and to the inner one.
func (c *SeparationDistance) SetRobot(r *robot.Robot) {
	c.base.SetRobot(r)
	c.inner.SetRobot(r)
}

func (c *SeparationDistance) Add(name string, position *r3.Vector, force bool) error {
	if position == nil {
		return errors.Errorf("constraint: object %q has no position", name)
	}
	return c.objects.Add(name, position, force)
}

func (c *SeparationDistance) Remove(name string) error {
	_, err := c.objects.Remove(name)
	return err
}

func (c *SeparationDistance) Get(name string) (*r3.Vector, error) {
	return c.objects.Get(name)
}

// Distance returns the separation distance measured by the last Compute.
func (c *SeparationDistance) Distance() float64 { return c.distance }

func (c *SeparationDistance) Inner() Constraint { return c.inner }

func (c *SeparationDistance) Compute() float64 {
	c.distance = c.closest()
	c.interpolator.Compute()
	return c.inner.Compute()
}

func (c *SeparationDistance) closest() float64 {
	d := math.Inf(1)
	if c.robot == nil {
		return d
	}
	origin := c.robot.Task.State.Pose.Origin(c.frame)
	for _, p := range c.objects.Items() {
		d = math.Min(d, p.Sub(origin).Norm())
	}
	return d
}
