package integrators

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/dynamo"
)

// ErrUnknown indicates an integrator name with no implementation.
var ErrUnknown = errors.New("integrators: unknown integrator")

func constructors() map[string]func() dynamo.Integrator {
	return map[string]func() dynamo.Integrator{
		"euler": func() dynamo.Integrator { return NewEuler() },
		"rk4":   func() dynamo.Integrator { return NewRK4() },
	}
}

// New returns a fresh integrator by name.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := constructors()[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknown, "%q", name)
	}
	return fn(), nil
}

// Names lists the available integrators.
func Names() []string {
	all := constructors()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
