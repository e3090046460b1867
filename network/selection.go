// SPDX-License-Identifier: MIT

package network

import (
	"math"
	"sort"

	"github.com/katalvlaran/quikdel/core"
)

// targetCount returns max(1, round(H / ratio)).
func targetCount(h int, ratio float64) int {
	t := int(math.Round(float64(h) / ratio))
	if t < 1 {
		t = 1
	}
	if t > h {
		t = h
	}

	return t
}

// selectSuperspots walks hotspots in descending SES (tie → lower id) and keeps
// a candidate when its spacing to every kept superspot is ≥ spacing. It stops
// as soon as target superspots are kept; fewer may be returned when the
// spacing constraint runs out of candidates.
// Complexity: O(H log H + H·target).
func selectSuperspots(hs []core.Hotspot, o core.DistanceOracle, target int, spacing float64) []core.HotspotID {
	order := make([]core.HotspotID, len(hs))
	for i := range hs {
		order[i] = hs[i].ID
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := hs[order[i]], hs[order[j]]
		if a.SES != b.SES {
			return a.SES > b.SES
		}
		return a.ID < b.ID
	})

	selected := make([]core.HotspotID, 0, target)
	for _, cand := range order {
		if len(selected) == target {
			break
		}
		ok := true
		for _, s := range selected {
			if core.Symmetric(o, cand, s) < spacing {
				ok = false
				break
			}
		}
		if ok {
			selected = append(selected, cand)
		}
	}

	return selected
}
