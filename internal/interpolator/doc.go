// Package interpolator maps a live input value to a live output value
// through shared float handles.
//
// # Usage
//
//	distance := new(float64)
//	maxVel := interpolator.NewSaturatedLinear(
//		interpolator.Point{X: 0.1, Y: 0},
//		interpolator.Point{X: 0.5, Y: 0.25},
//		distance)
//	vel := constraint.NewVelocity(maxVel.Output())
//
// The separation distance constraint rebinds the input to the measured
// distance with SetInput.
package interpolator
