// SPDX-License-Identifier: MIT

package qlearn

import "math"

// Probabilities returns the Boltzmann distribution over values:
//
//	P(i) = exp((v_i − max v)/T) / Σ_j exp((v_j − max v)/T)
//
// Subtracting the maximum keeps the exponentials in (0, 1]. A non-positive
// temperature degenerates to a uniform split over the maximal values.
func Probabilities(values []float64, temperature float64) []float64 {
	p := make([]float64, len(values))
	if len(values) == 0 {
		return p
	}
	maxV := values[0]
	for _, v := range values[1:] {
		maxV = math.Max(maxV, v)
	}

	var sum float64
	for i, v := range values {
		switch {
		case temperature > 0:
			p[i] = math.Exp((v - maxV) / temperature)
		case v == maxV:
			p[i] = 1
		}
		sum += p[i]
	}
	for i := range p {
		p[i] /= sum
	}

	return p
}

// Boltzmann samples an index from Probabilities(values, temperature) using a
// uniform draw u ∈ [0,1).
func Boltzmann(values []float64, temperature, u float64) int {
	p := Probabilities(values, temperature)
	acc := 0.0
	for i, pi := range p {
		acc += pi
		if u < acc {
			return i
		}
	}

	// Rounding left u ≥ acc; take the last non-zero slot.
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] > 0 {
			return i
		}
	}
	return 0
}

// Greedy returns the index of the largest value (tie → lowest index), or -1.
func Greedy(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}
