// SPDX-License-Identifier: MIT

package network

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/quikdel/core"
)

// place creates one hotspot per tract at the weighted centroid of the tract's
// producer and consumer sites. Hotspot ids follow ascending tract id.
//
// Errors: DataError for duplicate tracts, sites in unknown tracts, and tracts
// without any site.
// Complexity: O(T log T + P + C).
func place(in Input) ([]core.Hotspot, error) {
	tracts := append([]core.CensusTract(nil), in.Tracts...)
	sort.Slice(tracts, func(i, j int) bool { return tracts[i].ID < tracts[j].ID })

	pos := make(map[string]int, len(tracts))
	for i, t := range tracts {
		if t.ID == "" {
			return nil, &DataError{Reason: "tract with empty id"}
		}
		if _, dup := pos[t.ID]; dup {
			return nil, &DataError{Reason: "duplicate tract", Ref: t.ID}
		}
		pos[t.ID] = i
	}

	sites := make([][]core.Site, len(tracts))
	producers := make([]int, len(tracts))
	consumers := make([]int, len(tracts))
	for _, group := range []struct {
		list  []core.Site
		count []int
	}{{in.Producers, producers}, {in.Consumers, consumers}} {
		for _, s := range group.list {
			i, ok := pos[s.TractID]
			if !ok {
				return nil, &DataError{Reason: fmt.Sprintf("site %q references unknown tract", s.ID), Ref: s.TractID}
			}
			sites[i] = append(sites[i], s)
			group.count[i]++
		}
	}

	hotspots := make([]core.Hotspot, len(tracts))
	for i, t := range tracts {
		loc, ok := core.WeightedCentroid(sites[i])
		if !ok {
			return nil, &DataError{Reason: "tract has zero producers and zero consumers", Ref: t.ID}
		}
		hotspots[i] = core.Hotspot{
			ID:        core.HotspotID(i),
			TractID:   t.ID,
			Location:  loc,
			Producers: producers[i],
			Consumers: consumers[i],
			Bordering: borderCount(t, pos),
			Cluster:   core.NoHotspot,
		}
	}

	return hotspots, nil
}

// borderCount counts distinct known neighbors, ignoring self references.
func borderCount(t core.CensusTract, known map[string]int) int {
	uniq := make(map[string]struct{}, len(t.Bordering))
	for _, b := range t.Bordering {
		if b == t.ID {
			continue
		}
		if _, ok := known[b]; ok {
			uniq[b] = struct{}{}
		}
	}

	return len(uniq)
}

// tractOrder returns tract ids in hotspot-id order.
func tractOrder(hs []core.Hotspot) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.TractID
	}

	return out
}
