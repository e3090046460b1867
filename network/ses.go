// SPDX-License-Identifier: MIT

package network

import (
	"math"

	"github.com/katalvlaran/quikdel/core"
)

// score writes the Superspot Eligibility Score of every hotspot in place.
//
//	SES(h) = wp·N(producers) + wc·N(consumers) + wb·N(bordering)
//
// where N is the chosen normalization over all hotspots of this city run and
// the weights are re-normalized to sum to 1, so SES ∈ [0,1]. Scores are not
// comparable across runs.
// Complexity: O(H).
func score(hs []core.Hotspot, w SESWeights, norm Normalization) {
	n := len(hs)
	prod := make([]float64, n)
	cons := make([]float64, n)
	bord := make([]float64, n)
	for i, h := range hs {
		prod[i] = float64(h.Producers)
		cons[i] = float64(h.Consumers)
		bord[i] = float64(h.Bordering)
	}
	scale := minMax
	if norm == ZScore {
		scale = zLogistic
	}
	scale(prod)
	scale(cons)
	scale(bord)

	sum := w.Producers + w.Consumers + w.Bordering
	for i := range hs {
		hs[i].SES = (w.Producers*prod[i] + w.Consumers*cons[i] + w.Bordering*bord[i]) / sum
	}
}

func minMax(xs []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	span := hi - lo
	for i, x := range xs {
		if span == 0 {
			xs[i] = 0
			continue
		}
		xs[i] = (x - lo) / span
	}
}

func zLogistic(xs []float64) {
	if len(xs) == 0 {
		return
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var v float64
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	std := math.Sqrt(v / float64(len(xs)))
	for i, x := range xs {
		if std == 0 {
			xs[i] = 0.5
			continue
		}
		xs[i] = 1 / (1 + math.Exp(-(x-mean)/std))
	}
}
