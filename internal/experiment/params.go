package experiment

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/spatial"
)

var ErrUnknownParam = errors.New("experiment: unknown parameter")

var axes = [6]string{"x", "y", "z", "rx", "ry", "rz"}

var wrenchAxes = [6]string{"fx", "fy", "fz", "tx", "ty", "tz"}

// Params maps dotted names to live values of the built setup. Writing
// through a handle changes the setup between cycles.
type Params map[string]*float64

func (p Params) Lookup(name string) (*float64, error) {
	h, ok := p[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownParam, "%q", name)
	}
	return h, nil
}

func (p Params) Set(name string, value float64) error {
	h, err := p.Lookup(name)
	if err != nil {
		return err
	}
	*h = value
	return nil
}

func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Params) bind(prefix, key string, h *float64) {
	p[prefix+"."+key] = h
}

func (p Params) bindVector6(prefix string, v *spatial.Vector6, names [6]string) {
	for i := range v {
		p.bind(prefix, names[i], &v[i])
	}
}

func (p Params) bindPosition(prefix string, v *r3.Vector) {
	p.bind(prefix, "x", &v.X)
	p.bind(prefix, "y", &v.Y)
	p.bind(prefix, "z", &v.Z)
}

func (p Params) bindJoints(prefix string, q []float64) {
	for i := range q {
		p.bind(prefix, fmt.Sprintf("q%d", i), &q[i])
	}
}
