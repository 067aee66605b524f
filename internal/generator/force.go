package generator

import (
	"github.com/san-kum/phrictl/internal/spatial"
)

// ForceProxy forwards a wrench set by external code.
type ForceProxy struct {
	forceBase
	target *spatial.Wrench
	fn     func(out *spatial.Wrench)
}

// NewForceProxy forwards *target each cycle. Changes to *target are picked
// up on the next Compute.
func NewForceProxy(target *spatial.Wrench, frame spatial.Frame) *ForceProxy {
	g := &ForceProxy{target: target}
	g.forceBase = newForceBase(g, frame)
	return g
}

// NewForceProxyFunc calls fn each cycle to produce the wrench.
func NewForceProxyFunc(fn func(out *spatial.Wrench), frame spatial.Frame) *ForceProxy {
	g := &ForceProxy{fn: fn}
	g.forceBase = newForceBase(g, frame)
	return g
}

// Target returns the shared target handle, nil for function proxies.
func (g *ForceProxy) Target() *spatial.Wrench { return g.target }

func (g *ForceProxy) update(out *spatial.Wrench) {
	switch {
	case g.fn != nil:
		g.fn(out)
	case g.target != nil:
		*out = *g.target
	}
}

// ExternalForce forwards the wrench measured at the control point, making
// the robot comply with it through the controller's damping.
type ExternalForce struct {
	forceBase
}

func NewExternalForce() *ExternalForce {
	g := &ExternalForce{}
	g.forceBase = newForceBase(g, spatial.ControlPoint)
	return g
}

func (g *ExternalForce) update(out *spatial.Wrench) {
	if g.robot == nil {
		return
	}
	*out = g.robot.Task.State.Wrench
}
