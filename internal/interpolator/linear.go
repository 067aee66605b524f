package interpolator

// Linear interpolates along the line through two points. With saturation
// enabled the output is clamped to the points' values outside [From.X, To.X].
type Linear struct {
	base
	From       Point
	To         Point
	Saturation bool

	slope, offset float64
}

func NewLinear(from, to Point, input *float64) *Linear {
	l := &Linear{base: newBase(input), From: from, To: to}
	l.ComputeParameters()
	return l
}

// NewSaturatedLinear returns a Linear interpolator with saturation enabled.
func NewSaturatedLinear(from, to Point, input *float64) *Linear {
	l := NewLinear(from, to, input)
	l.Saturation = true
	return l
}

// ComputeParameters refreshes the line after From or To changed.
func (l *Linear) ComputeParameters() {
	dx := l.To.X - l.From.X
	if dx == 0 {
		l.slope = 0
		l.offset = l.From.Y
		return
	}
	l.slope = (l.To.Y - l.From.Y) / dx
	l.offset = l.From.Y - l.slope*l.From.X
}

func (l *Linear) Compute() float64 {
	x := *l.input
	// a flat line skips the product so an infinite input stays finite
	y := l.offset
	if l.slope != 0 {
		y += l.slope * x
	}

	if l.Saturation {
		lo, hi := l.From, l.To
		if lo.X > hi.X {
			lo, hi = hi, lo
		}
		switch {
		case x < lo.X:
			y = lo.Y
		case x > hi.X:
			y = hi.Y
		}
	}

	*l.output = y
	return y
}
