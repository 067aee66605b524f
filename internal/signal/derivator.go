package signal

// Derivator computes backward finite differences. The first sample yields 0.
type Derivator struct {
	prev    []float64
	started bool
}

func NewDerivator(size int) *Derivator {
	return &Derivator{prev: make([]float64, size)}
}

// Derive writes (x - x_prev)/dt into out and remembers x.
func (d *Derivator) Derive(x, out []float64, dt float64) {
	for i := range d.prev {
		if d.started && dt > 0 {
			out[i] = (x[i] - d.prev[i]) / dt
		} else {
			out[i] = 0
		}
		d.prev[i] = x[i]
	}
	d.started = true
}

func (d *Derivator) Reset() {
	clear(d.prev)
	d.started = false
}
