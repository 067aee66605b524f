package trajectory

import "github.com/san-kum/phrictl/internal/polynomial"

// Point is a waypoint. Its fields are shared handles: writing through them
// between cycles changes the waypoint seen by the next ComputeTimings or
// ComputeParameters.
type Point struct {
	Y   *float64
	DY  *float64
	D2Y *float64
}

// NewPoint allocates a point with the given position, velocity and acceleration.
func NewPoint(y, dy, d2y float64) Point {
	return Point{Y: &y, DY: &dy, D2Y: &d2y}
}

func (p Point) at(x float64) polynomial.Point {
	return polynomial.Point{X: x, Y: *p.Y, DY: *p.DY, D2Y: *p.D2Y}
}
