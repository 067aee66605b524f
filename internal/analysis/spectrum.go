package analysis

import (
	"math/cmplx"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrTooShort indicates a series with too few samples to analyze.
	ErrTooShort = errors.New("analysis: series too short")

	// ErrDegenerate indicates a series with no spread.
	ErrDegenerate = errors.New("analysis: degenerate series")
)

// Spectrum is the one-sided amplitude spectrum of a real series with its
// mean removed.
type Spectrum struct {
	Frequencies []float64
	Amplitudes  []float64
}

type Peak struct {
	Frequency float64
	Amplitude float64
}

// NewSpectrum computes the spectrum of values sampled every sampleTime
// seconds. Amplitudes are scaled so a sine of amplitude A covering a whole
// number of periods shows a peak of A.
func NewSpectrum(values []float64, sampleTime float64) (*Spectrum, error) {
	n := len(values)
	if n < 4 {
		return nil, errors.Wrapf(ErrTooShort, "%d samples", n)
	}
	if !(sampleTime > 0) {
		return nil, errors.Errorf("analysis: sample time must be positive, got %g", sampleTime)
	}

	mean := stat.Mean(values, nil)
	seq := make([]float64, n)
	for i, v := range values {
		seq[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, seq)
	s := &Spectrum{
		Frequencies: make([]float64, len(coeff)),
		Amplitudes:  make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Frequencies[i] = fft.Freq(i) / sampleTime
		scale := 2 / float64(n)
		if i == 0 || (n%2 == 0 && i == len(coeff)-1) {
			scale = 1 / float64(n)
		}
		s.Amplitudes[i] = cmplx.Abs(c) * scale
	}
	return s, nil
}

// Dominant returns the strongest non-constant component.
func (s *Spectrum) Dominant() (frequency, amplitude float64) {
	for i := 1; i < len(s.Amplitudes); i++ {
		if s.Amplitudes[i] > amplitude {
			frequency, amplitude = s.Frequencies[i], s.Amplitudes[i]
		}
	}
	return frequency, amplitude
}

// Peaks returns up to k local maxima, strongest first.
func (s *Spectrum) Peaks(k int) []Peak {
	var peaks []Peak
	a := s.Amplitudes
	for i := 1; i < len(a); i++ {
		left := a[i-1]
		right := 0.0
		if i+1 < len(a) {
			right = a[i+1]
		}
		if a[i] > left && a[i] >= right && a[i] > 0 {
			peaks = append(peaks, Peak{Frequency: s.Frequencies[i], Amplitude: a[i]})
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Amplitude > peaks[j].Amplitude })
	if len(peaks) > k {
		peaks = peaks[:k]
	}
	return peaks
}
