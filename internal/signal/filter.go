package signal

import "math"

// Smoothing returns the coefficient α = 1/(1+2π·f·dt) of a single-pole
// low-pass filter with cutoff frequency f (Hz) sampled every dt seconds.
func Smoothing(sampleTime, cutoffFrequency float64) float64 {
	return 1 / (1 + 2*math.Pi*cutoffFrequency*sampleTime)
}

// SmoothingFromTimeConstant returns α = τ/(τ+dt).
func SmoothingFromTimeConstant(sampleTime, timeConstant float64) float64 {
	if timeConstant <= 0 {
		return 0
	}
	return timeConstant / (timeConstant + sampleTime)
}

// LowPassFilter is a first-order filter y = α·y_prev + (1-α)·x. An α of 0
// passes the input through.
type LowPassFilter struct {
	Alpha float64
	prev  float64
}

func NewLowPassFilter(alpha float64) *LowPassFilter {
	return &LowPassFilter{Alpha: alpha}
}

func NewLowPassFilterFromFrequency(sampleTime, cutoffFrequency float64) *LowPassFilter {
	return NewLowPassFilter(Smoothing(sampleTime, cutoffFrequency))
}

func (f *LowPassFilter) Filter(x float64) float64 {
	f.prev = f.Alpha*f.prev + (1-f.Alpha)*x
	return f.prev
}

func (f *LowPassFilter) Value() float64 { return f.prev }

func (f *LowPassFilter) Reset() { f.prev = 0 }
