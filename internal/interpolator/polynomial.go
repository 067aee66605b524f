package interpolator

import (
	"github.com/san-kum/phrictl/internal/polynomial"
)

// Polynomial interpolates with the fifth-order polynomial matching value,
// slope and curvature at both points. Outside the interval the output
// saturates to the boundary values.
type Polynomial struct {
	base
	quintic polynomial.Quintic
}

func NewPolynomial(from, to polynomial.Point, input *float64) *Polynomial {
	if from.X > to.X {
		from, to = to, from
	}
	return &Polynomial{
		base:    newBase(input),
		quintic: polynomial.NewQuintic(from, to),
	}
}

func (p *Polynomial) Compute() float64 {
	y := p.quintic.Eval(*p.input)
	*p.output = y
	return y
}
