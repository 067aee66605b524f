// Package analysis characterizes recorded runs.
//
//   - [NewSpectrum]: amplitude spectrum of a sampled series, used to spot
//     force or velocity chatter
//   - [FitLinear]: least squares line through paired series
//   - [ContactStiffness]: stiffness of the environment estimated from the
//     samples in contact
//
// # Chatter Detection
//
//	s, err := analysis.NewSpectrum(force, dt)
//	if err == nil {
//	    f, a := s.Dominant()
//	    // a large amplitude at f close to the Nyquist frequency means chatter
//	}
package analysis
