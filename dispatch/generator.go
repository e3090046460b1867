// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/network"
)

// Generator synthesizes a request workload for a network.
//
// Origins are drawn proportionally to hotspot producer counts and
// destinations proportionally to consumer counts (excluding the origin);
// a zero total falls back to a uniform draw. Creation times are uniform in
// [0, ReleaseFraction·Horizon] and
//
//	deadline = created + DeadlineSlack·directTime(origin, dest) + DeadlineBase.
type Generator struct {
	Count           int
	Horizon         float64
	ReleaseFraction float64
	DeadlineSlack   float64
	DeadlineBase    float64
	Seed            uint64
}

// DefaultGenerator returns a generator for n requests over an 8-hour horizon.
func DefaultGenerator(n int) Generator {
	return Generator{
		Count:           n,
		Horizon:         480,
		ReleaseFraction: 0.75,
		DeadlineSlack:   2,
		DeadlineBase:    30,
		Seed:            42,
	}
}

// Generate returns Count requests sorted by creation time with ids 0..Count-1.
func (g Generator) Generate(net *network.Network) ([]Request, error) {
	switch {
	case net == nil || net.Oracle() == nil:
		return nil, ErrNotReady
	case net.Len() < 2:
		return nil, fmt.Errorf("%w: need at least 2 hotspots", ErrBadOption)
	case g.Count < 0:
		return nil, fmt.Errorf("%w: negative count", ErrBadOption)
	case !(g.Horizon > 0):
		return nil, fmt.Errorf("%w: horizon must be > 0", ErrBadOption)
	case !(g.ReleaseFraction > 0 && g.ReleaseFraction <= 1):
		return nil, fmt.Errorf("%w: release fraction must be in (0,1]", ErrBadOption)
	case g.DeadlineSlack < 0 || g.DeadlineBase < 0:
		return nil, fmt.Errorf("%w: negative deadline term", ErrBadOption)
	}

	rng := rand.New(rand.NewPCG(g.Seed, g.Seed^0x5851f42d4c957f2d))
	o := net.Oracle()
	prod := make([]float64, net.Len())
	cons := make([]float64, net.Len())
	for i, h := range net.Hotspots {
		prod[i] = float64(h.Producers)
		cons[i] = float64(h.Consumers)
	}

	out := make([]Request, 0, g.Count)
	for range g.Count {
		from := pick(rng, prod, -1)
		to := pick(rng, cons, from)
		created := rng.Float64() * g.ReleaseFraction * g.Horizon
		direct := 0.0
		if t, ok := o.Travel(core.HotspotID(from), core.HotspotID(to)); ok {
			direct = t.Time
		}
		out = append(out, Request{
			Origin:      core.HotspotID(from),
			Destination: core.HotspotID(to),
			CreatedAt:   created,
			Deadline:    created + g.DeadlineSlack*direct + g.DeadlineBase,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	for i := range out {
		out[i].ID = i
	}

	return out, nil
}

// pick draws an index proportionally to w, never returning skip.
func pick(rng *rand.Rand, w []float64, skip int) int {
	total := 0.0
	for i, x := range w {
		if i != skip && x > 0 {
			total += x
		}
	}
	if total == 0 {
		n := len(w)
		if skip >= 0 {
			n--
		}
		i := rng.IntN(n)
		if skip >= 0 && i >= skip {
			i++
		}
		return i
	}
	u := rng.Float64() * total
	last := -1
	for i, x := range w {
		if i == skip || x <= 0 {
			continue
		}
		last = i
		if u < x {
			return i
		}
		u -= x
	}

	return last
}
