package refine

import "math"

// hit reports whether a Bernoulli trial with probability p succeeds.
// Exactly one value is drawn from rng in every case so that a fixed draw
// sequence maps to a fixed outcome sequence. A p outside [0,1], NaN included,
// never hits.
func hit(p float64, rng RandomSource) bool {
	r := rng.Float64()
	if !validProb(p) {
		return false
	}
	return r < p
}

func validProb(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
