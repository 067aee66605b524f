package generator

import (
	"github.com/san-kum/phrictl/internal/spatial"
)

// VelocityProxy forwards a twist set by external code.
type VelocityProxy struct {
	velocityBase
	target *spatial.Twist
	fn     func(out *spatial.Twist)
}

func NewVelocityProxy(target *spatial.Twist, frame spatial.Frame) *VelocityProxy {
	g := &VelocityProxy{target: target}
	g.velocityBase = newVelocityBase(g, frame)
	return g
}

func NewVelocityProxyFunc(fn func(out *spatial.Twist), frame spatial.Frame) *VelocityProxy {
	g := &VelocityProxy{fn: fn}
	g.velocityBase = newVelocityBase(g, frame)
	return g
}

// Target returns the shared target handle, nil for function proxies.
func (g *VelocityProxy) Target() *spatial.Twist { return g.target }

func (g *VelocityProxy) update(out *spatial.Twist) {
	switch {
	case g.fn != nil:
		g.fn(out)
	case g.target != nil:
		*out = *g.target
	}
}
