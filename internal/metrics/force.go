package metrics

import (
	"github.com/san-kum/phrictl/internal/sim"
)

// PeakForce is the largest measured force magnitude.
type PeakForce struct {
	peak float64
}

func NewPeakForce() *PeakForce { return &PeakForce{} }

func (p *PeakForce) Name() string { return "peak_force" }

func (p *PeakForce) Observe(s *sim.Sample) {
	p.peak = max(p.peak, s.Wrench.Linear().Norm())
}

func (p *PeakForce) Value() float64 { return p.peak }
func (p *PeakForce) Reset()         { p.peak = 0 }

// ForceCompliance is the fraction of cycles whose measured force stays
// within threshold.
type ForceCompliance struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewForceCompliance(threshold float64) *ForceCompliance {
	return &ForceCompliance{
		name:      "force_compliance",
		threshold: threshold,
	}
}

func (f *ForceCompliance) Name() string {
	return f.name
}

func (f *ForceCompliance) Observe(s *sim.Sample) {
	f.samples++
	if s.Wrench.Linear().Norm() > f.threshold {
		f.violations++
	}
}

func (f *ForceCompliance) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(f.violations)/float64(f.samples)
}

func (f *ForceCompliance) Reset() {
	f.violations = 0
	f.samples = 0
}
