// SPDX-License-Identifier: MIT

// Package dispatch executes delivery requests over a trained network.
//
// A Router turns the frozen policy fragments of package qlearn into
// two-level paths: a hotspot phase that leaves the origin cluster through its
// superspot, a superspot phase across clusters, and a hotspot phase down to
// the destination. The Simulator runs requests on a logical clock, one
// courier per dispatched request, and optionally lets couriers that share a
// preferred next hop merge when their remaining tails overlap enough.
//
// Merge arbitration is serialized: proposals are built in parallel, queued by
// (slack asc, saving desc, sequence asc) and decided one at a time, so a
// courier takes part in at most one merge per tick and never carries more
// than CourierCapacity requests.
//
// Request lifecycle:
//
//	created → queued → in_transit → (shared) → completed | expired
//
// Terminal states never change. Requests whose deadline passes expire at the
// next tick; requests open at the horizon expire with reason "horizon reached".
package dispatch
