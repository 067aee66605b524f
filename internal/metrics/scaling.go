package metrics

import (
	"github.com/san-kum/phrictl/internal/sim"
)

// StopEpsilon is the scaling factor under which a cycle counts as stopped.
const StopEpsilon = 1e-9

// MeanScaling is the mean scaling factor applied by the safety controller.
type MeanScaling struct {
	sum     float64
	samples int
}

func NewMeanScaling() *MeanScaling { return &MeanScaling{} }

func (m *MeanScaling) Name() string { return "mean_scaling" }

func (m *MeanScaling) Observe(s *sim.Sample) {
	m.sum += s.ScalingFactor
	m.samples++
}

func (m *MeanScaling) Value() float64 {
	if m.samples == 0 {
		return 1
	}
	return m.sum / float64(m.samples)
}

func (m *MeanScaling) Reset() {
	m.sum = 0
	m.samples = 0
}

// StopRatio is the fraction of cycles in which the commands were zeroed.
type StopRatio struct {
	stopped int
	samples int
}

func NewStopRatio() *StopRatio { return &StopRatio{} }

func (r *StopRatio) Name() string { return "stop_ratio" }

func (r *StopRatio) Observe(s *sim.Sample) {
	r.samples++
	if s.ScalingFactor < StopEpsilon {
		r.stopped++
	}
}

func (r *StopRatio) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.stopped) / float64(r.samples)
}

func (r *StopRatio) Reset() {
	r.stopped = 0
	r.samples = 0
}
