// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"fmt"
)

// Result summarizes one simulation run.
type Result struct {
	RunID           string    `json:"run_id"`
	City            string    `json:"city"`
	Ratio           float64   `json:"ratio"`
	RideSharing     bool      `json:"ride_sharing"`
	Total           int       `json:"total"`
	Completed       int       `json:"completed"`
	Expired         int       `json:"expired"`
	SharedRequests  int       `json:"shared_requests"`
	Merges          int       `json:"merges"`
	MergeConflicts  int       `json:"merge_conflicts"`
	Rejected        int       `json:"rejected"`
	SuccessRate     float64   `json:"success_rate"`
	TotalDistance   float64   `json:"total_distance"`
	AvgDeliveryTime float64   `json:"avg_delivery_time"`
	Couriers        int       `json:"couriers"`
	Duration        float64   `json:"duration"`
	Requests        []Request `json:"requests,omitempty"`
}

// Comparison contrasts a ride-sharing run against its baseline.
type Comparison struct {
	// DistanceReductionPct is 100·(base − shared)/base; 0 when base is 0.
	DistanceReductionPct float64 `json:"distance_reduction_pct"`
	SuccessRateDelta     float64 `json:"success_rate_delta"`
	DeliveryTimeDelta    float64 `json:"delivery_time_delta"`
}

// Compare reports shared relative to base.
func Compare(shared, base *Result) Comparison {
	var c Comparison
	if base.TotalDistance > 0 {
		c.DistanceReductionPct = 100 * (base.TotalDistance - shared.TotalDistance) / base.TotalDistance
	}
	c.SuccessRateDelta = shared.SuccessRate - base.SuccessRate
	c.DeliveryTimeDelta = shared.AvgDeliveryTime - base.AvgDeliveryTime

	return c
}

// Ablation runs reqs with and without ride-sharing under otherwise identical
// options and compares the two.
func (s *Simulator) Ablation(ctx context.Context, reqs []Request) (shared, base *Result, cmp Comparison, err error) {
	on, off := *s, *s
	on.opts.RideSharing, off.opts.RideSharing = true, false

	if shared, err = on.Run(ctx, reqs); err != nil {
		return nil, nil, cmp, fmt.Errorf("ride-sharing run: %w", err)
	}
	if base, err = off.Run(ctx, reqs); err != nil {
		return nil, nil, cmp, fmt.Errorf("baseline run: %w", err)
	}

	return shared, base, Compare(shared, base), nil
}
