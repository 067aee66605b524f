package polynomial

import (
	"math"
)

// Point is a boundary condition: abscissa, value and first two derivatives.
type Point struct {
	X   float64
	Y   float64
	DY  float64
	D2Y float64
}

// Quintic is the fifth-order polynomial matching position, velocity and
// acceleration at both ends of [From.X, To.X]. Outside the interval it
// saturates to the boundary values.
type Quintic struct {
	From Point
	To   Point

	// coefficients of y(t) = a t⁵ + b t⁴ + c t³ + d t² + e t + f, t = x - From.X
	a, b, c, d, e, f float64
}

func NewQuintic(from, to Point) Quintic {
	q := Quintic{From: from, To: to}
	q.Solve()
	return q
}

// Solve recomputes the coefficients from the boundary points.
func (q *Quintic) Solve() {
	yi, yf := q.From.Y, q.To.Y
	dyi, dyf := q.From.DY, q.To.DY
	d2yi, d2yf := q.From.D2Y, q.To.D2Y
	dx := q.To.X - q.From.X

	q.d = d2yi / 2
	q.e = dyi
	q.f = yi

	if dx <= 0 {
		q.a, q.b, q.c = 0, 0, 0
		return
	}

	dx2 := dx * dx
	dx3 := dx2 * dx
	dx4 := dx3 * dx
	dx5 := dx4 * dx

	q.a = -(12*yi - 12*yf + 6*dx*dyf + 6*dx*dyi - d2yf*dx2 + d2yi*dx2) / (2 * dx5)
	q.b = (30*yi - 30*yf + 14*dx*dyf + 16*dx*dyi - 2*d2yf*dx2 + 3*d2yi*dx2) / (2 * dx4)
	q.c = -(20*yi - 20*yf + 8*dx*dyf + 12*dx*dyi - d2yf*dx2 + 3*d2yi*dx2) / (2 * dx3)
}

// Duration returns the length of the interval.
func (q *Quintic) Duration() float64 {
	return q.To.X - q.From.X
}

func (q *Quintic) Eval(x float64) float64 {
	switch {
	case x >= q.To.X:
		return q.To.Y
	case x <= q.From.X:
		return q.From.Y
	}
	t := x - q.From.X
	return q.position(t)
}

// Velocity returns the first derivative at x.
func (q *Quintic) Velocity(x float64) float64 {
	switch {
	case x >= q.To.X:
		return q.To.DY
	case x <= q.From.X:
		return q.From.DY
	}
	return q.velocity(x - q.From.X)
}

// Acceleration returns the second derivative at x.
func (q *Quintic) Acceleration(x float64) float64 {
	switch {
	case x >= q.To.X:
		return q.To.D2Y
	case x <= q.From.X:
		return q.From.D2Y
	}
	return q.acceleration(x - q.From.X)
}

func (q *Quintic) position(t float64) float64 {
	return ((((q.a*t+q.b)*t+q.c)*t+q.d)*t+q.e)*t + q.f
}

func (q *Quintic) velocity(t float64) float64 {
	return (((5*q.a*t+4*q.b)*t+3*q.c)*t+2*q.d)*t + q.e
}

func (q *Quintic) acceleration(t float64) float64 {
	return ((20*q.a*t+12*q.b)*t+6*q.c)*t + 2*q.d
}

// MaxVelocity returns the largest first-derivative magnitude over the
// interval, from the endpoints and the real roots of the second derivative
// lying inside it.
func (q *Quintic) MaxVelocity() float64 {
	dx := q.Duration()
	peak := math.Max(math.Abs(q.velocity(0)), math.Abs(q.velocity(math.Max(dx, 0))))
	if dx <= 0 {
		return peak
	}
	for _, t := range RealRoots(20*q.a, 12*q.b, 6*q.c, 2*q.d) {
		if t > 0 && t < dx {
			peak = math.Max(peak, math.Abs(q.velocity(t)))
		}
	}
	return peak
}

// MaxAcceleration returns the largest second-derivative magnitude over the
// interval, from the endpoints and the real roots of the third derivative
// lying inside it.
func (q *Quintic) MaxAcceleration() float64 {
	dx := q.Duration()
	peak := math.Max(math.Abs(q.acceleration(0)), math.Abs(q.acceleration(math.Max(dx, 0))))
	if dx <= 0 {
		return peak
	}
	for _, t := range RealRoots(60*q.a, 24*q.b, 6*q.c) {
		if t > 0 && t < dx {
			peak = math.Max(peak, math.Abs(q.acceleration(t)))
		}
	}
	return peak
}
