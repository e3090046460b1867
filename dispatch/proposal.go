// SPDX-License-Identifier: MIT

package dispatch

import (
	"container/heap"
	"math"

	"github.com/katalvlaran/quikdel/core"
)

// Proposal is a candidate merge of two couriers at a shared next hop.
// Host is the courier arriving first at Meet (tie → lower id); the guest
// hands its request over at Meet and retires.
type Proposal struct {
	Seq          int
	Host, Guest  int
	Meet         core.HotspotID
	HostArrival  float64
	GuestArrival float64
	HostLoad     int
	GuestLoad    int
	Overlap      float64
	Saving       float64
	Slack        float64 // min over both requests of deadline − estimated arrival

	// merged itinerary of the host after Meet
	first, second *Request
	legs          []Step
}

// Overlap estimates how much of two tails from h can be shared:
//
//	a = d(h,dA), b = d(h,dB)
//	T = min(a + d(dA,dB), b + d(dB,dA))
//	overlap = clamp((a + b − T) / min(a,b), 0, 1)
//
// It is 1 when either tail is empty and 0 when a pair is unreachable.
// firstA reports whether dA is served first on the merged tail.
func Overlap(o core.DistanceOracle, h, dA, dB core.HotspotID) (overlap float64, firstA bool) {
	a, b := core.Distance(o, h, dA), core.Distance(o, h, dB)
	ab, ba := core.Distance(o, dA, dB), core.Distance(o, dB, dA)
	if dA == dB {
		ab, ba = 0, 0
	}
	viaA, viaB := a+ab, b+ba
	firstA = viaA <= viaB
	t := math.Min(viaA, viaB)
	if math.IsInf(t, 1) || math.IsInf(a, 1) || math.IsInf(b, 1) {
		return 0, firstA
	}
	m := math.Min(a, b)
	if m == 0 {
		return 1, firstA
	}

	return math.Max(0, math.Min(1, (a+b-t)/m)), firstA
}

// proposalQueue is a min-heap: smaller slack first, then larger saving, then
// earlier sequence number.
type proposalQueue []*Proposal

func (q proposalQueue) Len() int { return len(q) }

func (q proposalQueue) Less(i, j int) bool {
	if q[i].Slack != q[j].Slack {
		return q[i].Slack < q[j].Slack
	}
	if q[i].Saving != q[j].Saving {
		return q[i].Saving > q[j].Saving
	}
	return q[i].Seq < q[j].Seq
}

func (q proposalQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *proposalQueue) Push(x interface{}) { *q = append(*q, x.(*Proposal)) }

func (q *proposalQueue) Pop() interface{} {
	old := *q
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return p
}

// Queue orders proposals for arbitration. It is used by a single goroutine.
type Queue struct {
	pq proposalQueue
}

// Push adds p.
func (q *Queue) Push(p *Proposal) { heap.Push(&q.pq, p) }

// Pop removes the highest-priority proposal; ok is false when empty.
func (q *Queue) Pop() (p *Proposal, ok bool) {
	if len(q.pq) == 0 {
		return nil, false
	}
	return heap.Pop(&q.pq).(*Proposal), true
}

// Len returns the number of queued proposals.
func (q *Queue) Len() int { return len(q.pq) }
