package signal

// Deadband zeroes every component of v whose magnitude is within threshold.
func Deadband(v []float64, threshold float64) {
	for i, x := range v {
		if x <= threshold && x >= -threshold {
			v[i] = 0
		}
	}
}
