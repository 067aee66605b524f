// Package polynomial implements the fifth-order boundary-value polynomial
// used by the trajectory generator and the polynomial interpolator, along
// with the extremum search that bounds its derivatives.
package polynomial
