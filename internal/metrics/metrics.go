package metrics

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/sim"
)

var ErrUnknown = errors.New("metrics: unknown metric")

// Params carries the settings of the parameterized metrics.
type Params struct {
	ForceThreshold float64
	Mass           float64
}

func factories() map[string]func(p Params) sim.Metric {
	return map[string]func(p Params) sim.Metric{
		"command_effort":      func(Params) sim.Metric { return NewCommandEffort() },
		"joint_effort":        func(Params) sim.Metric { return NewJointEffort() },
		"peak_force":          func(Params) sim.Metric { return NewPeakForce() },
		"force_compliance":    func(p Params) sim.Metric { return NewForceCompliance(p.ForceThreshold) },
		"peak_kinetic_energy": func(p Params) sim.Metric { return NewKineticEnergy(p.Mass) },
		"mean_scaling":        func(Params) sim.Metric { return NewMeanScaling() },
		"stop_ratio":          func(Params) sim.Metric { return NewStopRatio() },
	}
}

// New returns the metric registered under name.
func New(name string, p Params) (sim.Metric, error) {
	f, ok := factories()[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknown, "%q", name)
	}
	return f(p), nil
}

func Names() []string {
	all := factories()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
