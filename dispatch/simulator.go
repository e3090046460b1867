// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/network"
	"github.com/katalvlaran/quikdel/qlearn"
)

// Simulator drives requests through the network on a logical clock.
// A Simulator may run several times; each Run owns its state.
type Simulator struct {
	net    *network.Network
	router *Router
	opts   Options
	log    *zap.Logger
}

// NewSimulator binds a network and its trained policies.
func NewSimulator(net *network.Network, pol *qlearn.Policies, opts ...Option) (*Simulator, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	router, err := NewRouter(net, pol)
	if err != nil {
		return nil, err
	}

	return &Simulator{
		net:    net,
		router: router,
		opts:   o,
		log:    o.Logger.With(zap.String("component", "dispatch"), zap.String("city", net.City)),
	}, nil
}

// Router returns the simulator's router.
func (s *Simulator) Router() *Router { return s.router }

// run is the mutable state of one simulation.
type run struct {
	*Simulator
	oracle   core.DistanceOracle
	requests []*Request
	couriers []*Courier
	arbiter  *Arbiter
	pickup   map[*Request]float64 // hand-over time of merged requests
	seq      int
	res      *Result
}

// Run simulates reqs (copied; the caller's slice is not modified).
//
// Per tick, in order:
//  1. expire requests whose deadline has passed;
//  2. queue requests whose creation time has come;
//  3. dispatch queued requests (routes are computed in parallel);
//  4. negotiate ride-shares (PAS in parallel, arbitration serialized);
//  5. advance couriers to the end of the tick.
//
// The run stops when every request is terminal or at the horizon, where open
// requests expire.
func (s *Simulator) Run(ctx context.Context, reqs []Request) (*Result, error) {
	r := &run{
		Simulator: s,
		oracle:    s.net.Oracle(),
		arbiter:   NewArbiter(s.opts.RideShareThreshold),
		pickup:    make(map[*Request]float64),
		res:       &Result{RunID: uuid.NewString(), City: s.net.City, Ratio: s.net.Ratio, RideSharing: s.opts.RideSharing},
	}
	r.requests = make([]*Request, len(reqs))
	for i := range reqs {
		cp := reqs[i]
		cp.Status, cp.CompletedAt, cp.Shared, cp.Reason = StatusCreated, 0, false, ""
		r.requests[i] = &cp
	}
	sort.SliceStable(r.requests, func(i, j int) bool { return r.requests[i].ID < r.requests[j].ID })

	now := 0.0
	for tick := 0; ; tick++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		now = float64(tick) * s.opts.Tick

		// 1) Expire.
		r.expire(now, func(q *Request) bool { return q.Deadline < now }, "deadline elapsed")
		if now >= s.opts.Horizon {
			r.expire(now, func(*Request) bool { return true }, "horizon reached")
			break
		}

		// 2) Queue.
		for _, q := range r.requests {
			if q.Status == StatusCreated && q.CreatedAt <= now {
				_ = q.Advance(StatusQueued)
			}
		}

		// 3) Dispatch.
		if err := r.dispatch(ctx, now); err != nil {
			return nil, err
		}

		// 4) Negotiate.
		if s.opts.RideSharing {
			if err := r.negotiate(ctx); err != nil {
				return nil, err
			}
		}

		// 5) Advance.
		r.advance(now + s.opts.Tick)
		if s.opts.TickHook != nil {
			snap := make([]Courier, 0, len(r.couriers))
			for _, c := range r.couriers {
				snap = append(snap, c.snapshot())
			}
			s.opts.TickHook(now, snap)
		}

		if r.allTerminal() {
			now += s.opts.Tick
			break
		}
	}

	r.finish(now)
	s.log.Info("simulation finished",
		zap.String("run_id", r.res.RunID),
		zap.Bool("ride_sharing", s.opts.RideSharing),
		zap.Int("requests", r.res.Total),
		zap.Int("completed", r.res.Completed),
		zap.Int("expired", r.res.Expired),
		zap.Int("merges", r.res.Merges),
		zap.Float64("distance", r.res.TotalDistance))

	return r.res, nil
}

func (r *run) allTerminal() bool {
	for _, q := range r.requests {
		if !q.Status.Terminal() {
			return false
		}
	}
	return true
}

func (r *run) expire(now float64, due func(*Request) bool, reason string) {
	for _, q := range r.requests {
		if q.Status.Terminal() || !due(q) {
			continue
		}
		q.expire(reason)
		r.observe(q, now)
	}
	for _, c := range r.couriers {
		if c.Retired {
			continue
		}
		had := c.Load()
		for _, q := range append([]*Request(nil), c.Carried...) {
			if q.Status == StatusExpired {
				c.drop(q)
			}
		}
		if had > 0 && c.Load() == 0 {
			c.Retired = true
		}
	}
}

func (r *run) observe(q *Request, now float64) {
	if r.opts.Observer == nil {
		return
	}
	latency := now - q.CreatedAt
	if q.Status == StatusCompleted {
		latency = q.CompletedAt - q.CreatedAt
	}
	r.opts.Observer.ObserveRequest(r.opts.RideSharing, q.Status.String(), latency)
}

// dispatch routes every queued request and spawns one courier per request.
func (r *run) dispatch(ctx context.Context, now float64) error {
	var queued []*Request
	for _, q := range r.requests {
		if q.Status == StatusQueued {
			queued = append(queued, q)
		}
	}
	if len(queued) == 0 {
		return nil
	}

	paths := make([]*Path, len(queued))
	errs := make([]error, len(queued))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, q := range queued {
		g.Go(func() error {
			paths[i], errs[i] = r.router.Route(q.Origin, q.Destination)
			return nil
		})
	}
	_ = g.Wait()

	for i, q := range queued {
		if err := errs[i]; err != nil {
			reason := "no route"
			if errors.Is(err, ErrPolicyGap) {
				reason = "policy gap"
			}
			q.expire(reason)
			r.observe(q, now)
			r.log.Debug("request dropped", zap.Int("request", q.ID), zap.Error(err))
			continue
		}
		_ = q.Advance(StatusInTransit)
		depart := math.Max(now, q.CreatedAt)
		c := newCourier(len(r.couriers), q, depart, paths[i].Steps)
		r.couriers = append(r.couriers, c)
		if len(paths[i].Steps) == 0 {
			r.deliver(c, q, depart)
		}
	}

	return nil
}

// deliver completes q at time at, or expires it if the deadline passed.
func (r *run) deliver(c *Courier, q *Request, at float64) {
	c.drop(q)
	if at > q.Deadline {
		q.expire("deadline elapsed")
	} else {
		_ = q.Advance(StatusCompleted)
		q.CompletedAt = at
	}
	r.observe(q, at)
}

func (r *run) advance(until float64) {
	for _, c := range r.couriers {
		c.decision = false
	}
	for _, c := range r.couriers {
		c.advance(until, func(c *Courier, at float64) {
			for _, q := range append([]*Request(nil), c.Carried...) {
				if q.Destination == c.Position {
					// a handed-over request is not on board before the guest arrives
					r.deliver(c, q, math.Max(at, r.pickup[q]))
				}
			}
		})
	}
}

type pasResult struct {
	courier *Courier
	hops    []core.HotspotID
	arrival map[core.HotspotID]float64
}

// negotiate builds proposals from couriers at decision points and arbitrates
// them in priority order.
func (r *run) negotiate(ctx context.Context) error {
	var ready []*Courier
	for _, c := range r.couriers {
		if c.decision && !c.Retired && !c.Merged && c.Load() == 1 && c.Next < len(c.Path) {
			ready = append(ready, c)
		}
	}
	if len(ready) < 2 {
		return nil
	}

	// PAS fan-out.
	pas := make([]pasResult, len(ready))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, c := range ready {
		g.Go(func() error {
			step := c.Path[c.Next]
			hops := r.router.PAS(step.Tier, c.Position, step.Goal, r.opts.PASSize)
			arr := make(map[core.HotspotID]float64, len(hops))
			for _, h := range hops {
				if t, ok := r.oracle.Travel(c.Position, h); ok {
					arr[h] = c.DepartAt + t.Time
				}
			}
			pas[i] = pasResult{courier: c, hops: hops, arrival: arr}
			return nil
		})
	}
	_ = g.Wait()

	// Proposals.
	var q Queue
	for i := range pas {
		for j := i + 1; j < len(pas); j++ {
			for _, h := range pas[i].hops {
				ai, okI := pas[i].arrival[h]
				aj, okJ := pas[j].arrival[h]
				if !okI || !okJ || math.Abs(ai-aj) > r.opts.TimeWindow {
					continue
				}
				if p := r.propose(pas[i].courier, pas[j].courier, h, ai, aj); p != nil {
					q.Push(p)
				}
			}
		}
	}

	// Arbitration.
	r.arbiter.Reset()
	for q.Len() > 0 {
		p, _ := q.Pop()
		out := r.arbiter.Decide(p)
		if r.opts.Observer != nil {
			r.opts.Observer.ObserveMerge(out.String())
		}
		switch out {
		case Accepted:
			r.apply(p)
		case MergeConflict:
			r.res.MergeConflicts++
		default:
			r.res.Rejected++
		}
	}

	return nil
}

// propose evaluates a merge of x and y at h. It returns nil if the guest
// would deliver at h anyway or the merged itinerary cannot be routed.
func (r *run) propose(x, y *Courier, h core.HotspotID, ax, ay float64) *Proposal {
	host, guest, ha, ga := x, y, ax, ay
	if ay < ax || (ay == ax && y.ID < x.ID) {
		host, guest, ha, ga = y, x, ay, ax
	}
	rh, rg := host.Carried[0], guest.Carried[0]
	if rg.Destination == h {
		return nil
	}
	overlap, hostFirst := Overlap(r.oracle, h, rh.Destination, rg.Destination)
	first, second := rh, rg
	if !hostFirst {
		first, second = rg, rh
	}

	leg1, err := r.router.Route(h, first.Destination)
	if err != nil {
		return nil
	}
	leg2, err := r.router.Route(first.Destination, second.Destination)
	if err != nil {
		return nil
	}
	meet := math.Max(ha, ga)
	est1 := meet + leg1.Time
	est2 := est1 + leg2.Time

	a := core.Distance(r.oracle, h, rh.Destination)
	b := core.Distance(r.oracle, h, rg.Destination)
	r.seq++

	return &Proposal{
		Seq:          r.seq,
		Host:         host.ID,
		Guest:        guest.ID,
		Meet:         h,
		HostArrival:  ha,
		GuestArrival: ga,
		HostLoad:     host.Load(),
		GuestLoad:    guest.Load(),
		Overlap:      overlap,
		Saving:       a + b - (leg1.Distance + leg2.Distance),
		Slack:        math.Min(first.Deadline-est1, second.Deadline-est2),
		first:        first,
		second:       second,
		legs:         append(append([]Step(nil), leg1.Steps...), leg2.Steps...),
	}
}

// hop builds the direct step from c's position to h under c's current phase.
func (r *run) hop(c *Courier, h core.HotspotID) ([]Step, error) {
	if c.Position == h {
		return nil, nil
	}
	t, ok := r.oracle.Travel(c.Position, h)
	if !ok {
		return nil, fmt.Errorf("%w: %d → %d", ErrNoRoute, c.Position, h)
	}
	cur := c.Path[c.Next]
	return []Step{{
		From: c.Position, To: h, Tier: cur.Tier, Goal: cur.Goal, Agent: c.Position,
		Ascend: h == r.net.ClusterOf(c.Position) && cur.Goal < 0, Distance: t.Distance, Time: t.Time,
	}}, nil
}

// apply executes an accepted proposal: the guest's request moves to the host,
// the guest heads to the meeting point and retires, the host waits there for
// the guest and then serves both destinations.
func (r *run) apply(p *Proposal) {
	host, guest := r.couriers[p.Host], r.couriers[p.Guest]
	hostHop, err := r.hop(host, p.Meet)
	if err != nil {
		return
	}
	guestHop, err := r.hop(guest, p.Meet)
	if err != nil {
		return
	}

	moved := guest.Carried[0]
	guest.Carried = nil
	guest.Path, guest.Next, guest.Merged = guestHop, 0, true
	if len(guestHop) == 0 {
		guest.Retired = true
	}

	meet := math.Max(p.HostArrival, p.GuestArrival)
	r.pickup[moved] = meet
	host.Carried = append(host.Carried, moved)
	host.Path = append(hostHop, p.legs...)
	host.Next, host.Merged = 0, true
	if len(hostHop) == 0 {
		host.DepartAt = math.Max(host.DepartAt, meet)
	} else {
		host.waitAt, host.waitUntil = p.Meet, meet
	}

	for _, q := range host.Carried {
		_ = q.Advance(StatusShared)
	}
	r.res.Merges++
	r.log.Debug("merge accepted",
		zap.Int("host", host.ID), zap.Int("guest", guest.ID), zap.Int("meet", int(p.Meet)),
		zap.Float64("overlap", p.Overlap), zap.Float64("slack", p.Slack))
}

func (r *run) finish(now float64) {
	res := r.res
	res.Duration = now
	res.Total = len(r.requests)
	res.Couriers = len(r.couriers)
	var sumTime float64
	for _, q := range r.requests {
		switch q.Status {
		case StatusCompleted:
			res.Completed++
			sumTime += q.CompletedAt - q.CreatedAt
		case StatusExpired:
			res.Expired++
		}
		if q.Shared {
			res.SharedRequests++
		}
		res.Requests = append(res.Requests, *q)
	}
	for _, c := range r.couriers {
		res.TotalDistance += c.Distance
	}
	if res.Total > 0 {
		res.SuccessRate = float64(res.Completed) / float64(res.Total)
	}
	if res.Completed > 0 {
		res.AvgDeliveryTime = sumTime / float64(res.Completed)
	}
}
