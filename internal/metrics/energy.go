package metrics

import (
	"github.com/san-kum/phrictl/internal/sim"
)

// KineticEnergy is the peak translational kinetic energy of the control
// point for a given effective mass.
type KineticEnergy struct {
	mass float64
	peak float64
}

func NewKineticEnergy(mass float64) *KineticEnergy {
	return &KineticEnergy{mass: mass}
}

func (k *KineticEnergy) Name() string { return "peak_kinetic_energy" }

func (k *KineticEnergy) Observe(s *sim.Sample) {
	v := s.Twist.Linear()
	k.peak = max(k.peak, 0.5*k.mass*v.Dot(v))
}

func (k *KineticEnergy) Value() float64 { return k.peak }
func (k *KineticEnergy) Reset()         { k.peak = 0 }
