// SPDX-License-Identifier: MIT

package core

import (
	"errors"
	"math"
)

// Sentinel errors for core primitives.
var (
	// ErrUnknownHotspot indicates an id outside the known hotspot range.
	ErrUnknownHotspot = errors.New("core: unknown hotspot")

	// ErrLoopNotAllowed indicates an edge from a hotspot to itself.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")

	// ErrBadWeight indicates a negative, NaN or infinite edge cost.
	ErrBadWeight = errors.New("core: edge cost must be finite and non-negative")
)

// HotspotID is the dense index of a hotspot within one city run.
type HotspotID int

// NoHotspot marks an unset hotspot reference.
const NoHotspot HotspotID = -1

// Point is a planar location (projected coordinates or lon/lat).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// CensusTract is the atomic geographic unit produced by the extraction step.
// Exactly one hotspot is placed per tract.
type CensusTract struct {
	ID        string   `json:"id"`
	Bordering []string `json:"bordering"`
	Centroid  Point    `json:"centroid"`
}

// Site is a producer (restaurant, store) or consumer (household) point.
// Weight ≤ 0 is treated as 1.
type Site struct {
	ID       string  `json:"id"`
	TractID  string  `json:"tract_id"`
	Location Point   `json:"location"`
	Weight   float64 `json:"weight,omitempty"`
}

// EffectiveWeight returns Weight, or 1 when Weight is not positive.
func (s Site) EffectiveWeight() float64 {
	if s.Weight <= 0 {
		return 1
	}
	return s.Weight
}

// Hotspot is a lower-tier routing node placed at a tract's weighted centroid.
//
// Cluster holds the id of the owning superspot. It is written only by the
// network builder and is frozen once the network is returned.
type Hotspot struct {
	ID        HotspotID `json:"id"`
	TractID   string    `json:"tract_id"`
	Location  Point     `json:"location"`
	Producers int       `json:"producers"`
	Consumers int       `json:"consumers"`
	Bordering int       `json:"bordering"`
	SES       float64   `json:"ses"`
	Cluster   HotspotID `json:"cluster"`
}

// Travel is the cost of moving between two hotspots.
type Travel struct {
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
}

// Finite reports whether both components are finite.
func (t Travel) Finite() bool {
	return !math.IsInf(t.Distance, 0) && !math.IsNaN(t.Distance) &&
		!math.IsInf(t.Time, 0) && !math.IsNaN(t.Time)
}

// DistanceOracle answers pairwise travel lookups between hotspots.
// Implementations must be safe for concurrent readers.
type DistanceOracle interface {
	// Len returns the number of hotspots the oracle covers.
	Len() int

	// Travel returns the cost from → to; ok is false for unknown ids or
	// unreachable pairs.
	Travel(from, to HotspotID) (Travel, bool)
}

// Distance is a convenience lookup returning +Inf when the pair is unknown.
func Distance(o DistanceOracle, from, to HotspotID) float64 {
	t, ok := o.Travel(from, to)
	if !ok {
		return math.Inf(1)
	}
	return t.Distance
}

// Symmetric returns min(d(a,b), d(b,a)), the spacing distance used between hubs.
func Symmetric(o DistanceOracle, a, b HotspotID) float64 {
	return math.Min(Distance(o, a, b), Distance(o, b, a))
}

// WeightedCentroid returns the weight-averaged location of sites.
// ok is false when sites is empty.
func WeightedCentroid(sites []Site) (Point, bool) {
	var sx, sy, sw float64
	for _, s := range sites {
		w := s.EffectiveWeight()
		sx += s.Location.X * w
		sy += s.Location.Y * w
		sw += w
	}
	if sw == 0 {
		return Point{}, false
	}

	return Point{X: sx / sw, Y: sy / sw}, true
}
