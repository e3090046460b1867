// SPDX-License-Identifier: MIT

package dispatch

// Outcome is the arbitration verdict on a proposal.
type Outcome int

const (
	Accepted Outcome = iota
	MergeConflict
	RejectedLoad
	RejectedDeadline
	RejectedOverlap
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case MergeConflict:
		return "conflict"
	case RejectedLoad:
		return "rejected_load"
	case RejectedDeadline:
		return "rejected_deadline"
	case RejectedOverlap:
		return "rejected_overlap"
	default:
		return "unknown"
	}
}

// Arbiter decides proposals one at a time in priority order. It remembers
// which couriers merged in the current tick; call Reset between ticks.
// Not safe for concurrent use.
type Arbiter struct {
	threshold float64
	merged    map[int]bool
}

// NewArbiter returns an arbiter with the given overlap threshold.
func NewArbiter(threshold float64) *Arbiter {
	return &Arbiter{threshold: threshold, merged: make(map[int]bool)}
}

// Reset forgets this tick's merges.
func (a *Arbiter) Reset() { clear(a.merged) }

// Decide accepts p iff neither courier merged this tick, the combined load
// fits CourierCapacity, no deadline is exceeded, and the overlap meets the
// threshold. Accepting marks both couriers as merged.
func (a *Arbiter) Decide(p *Proposal) Outcome {
	switch {
	case a.merged[p.Host] || a.merged[p.Guest]:
		return MergeConflict
	case p.HostLoad+p.GuestLoad > CourierCapacity:
		return RejectedLoad
	case p.Slack < 0:
		return RejectedDeadline
	case p.Overlap < a.threshold:
		return RejectedOverlap
	}
	a.merged[p.Host] = true
	a.merged[p.Guest] = true

	return Accepted
}
