// SPDX-License-Identifier: MIT

// Package metrics records training and dispatch telemetry in Prometheus
// collectors. A Collector satisfies both qlearn.Observer and
// dispatch.Observer.
package metrics

import (
	"sort"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/dispatch"
	"github.com/katalvlaran/quikdel/qlearn"
)

var (
	_ qlearn.Observer   = (*Collector)(nil)
	_ dispatch.Observer = (*Collector)(nil)
)

// Collector holds the quikdel metric vectors.
type Collector struct {
	episodesTotal  *prometheus.CounterVec
	episodeReward  *prometheus.HistogramVec
	episodeSteps   *prometheus.HistogramVec
	fragmentSize   *prometheus.HistogramVec
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	mergesTotal    *prometheus.CounterVec

	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewCollector registers the metric vectors on reg under namespace. A nil
// reg uses a fresh private registry.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) (*Collector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var gatherer prometheus.Gatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer, logger: logger.With(zap.String("component", "metrics"))}

	c.episodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_episodes_total",
			Help:      "Total number of training episodes",
		},
		[]string{"tier"},
	)
	c.episodeReward = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_episode_reward",
			Help:      "Cumulative reward per training episode",
			Buckets:   []float64{-10, -5, -2, -1, 0, 1, 2, 5, 10, 20},
		},
		[]string{"tier"},
	)
	c.episodeSteps = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_episode_steps",
			Help:      "Steps per training episode",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
		[]string{"tier"},
	)
	c.fragmentSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "policy_fragment_entries",
			Help:      "Q entries per frozen policy fragment",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"tier"},
	)
	c.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Delivery requests by ride-sharing mode and terminal status",
		},
		[]string{"ride_sharing", "status"},
	)
	c.requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_latency_minutes",
			Help:      "Time from creation to terminal state in simulated minutes",
			Buckets:   []float64{5, 10, 20, 30, 45, 60, 90, 120, 240},
		},
		[]string{"ride_sharing", "status"},
	)
	c.mergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_decisions_total",
			Help:      "Ride-share proposals by arbitration outcome",
		},
		[]string{"outcome"},
	)

	for _, col := range []prometheus.Collector{
		c.episodesTotal, c.episodeReward, c.episodeSteps, c.fragmentSize,
		c.requestsTotal, c.requestLatency, c.mergesTotal,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObserveEpisode records one finished training episode.
func (c *Collector) ObserveEpisode(tier string, reward float64, steps int) {
	c.episodesTotal.WithLabelValues(tier).Inc()
	c.episodeReward.WithLabelValues(tier).Observe(reward)
	c.episodeSteps.WithLabelValues(tier).Observe(float64(steps))
}

// ObserveFragment records the size of a frozen fragment.
func (c *Collector) ObserveFragment(tier string, entries int) {
	c.fragmentSize.WithLabelValues(tier).Observe(float64(entries))
}

// ObserveRequest records a request reaching a terminal status. Ablation runs
// are kept apart by the ride_sharing label.
func (c *Collector) ObserveRequest(rideSharing bool, status string, latency float64) {
	mode := strconv.FormatBool(rideSharing)
	c.requestsTotal.WithLabelValues(mode, status).Inc()
	c.requestLatency.WithLabelValues(mode, status).Observe(latency)
}

// ObserveMerge records an arbitration outcome.
func (c *Collector) ObserveMerge(outcome string) {
	c.mergesTotal.WithLabelValues(outcome).Inc()
}

// Summary flattens the counters into "metric{label}" → value, for printing at
// the end of a run. It is empty when the registry cannot be gathered.
func (c *Collector) Summary() map[string]float64 {
	out := make(map[string]float64)
	if c.gatherer == nil {
		return out
	}
	families, err := c.gatherer.Gather()
	if err != nil {
		c.logger.Warn("gather metrics", zap.Error(err))
		return out
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			labels := m.GetLabel()
			sort.Slice(labels, func(i, j int) bool { return labels[i].GetName() < labels[j].GetName() })
			for _, l := range labels {
				key += "{" + l.GetName() + "=" + l.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				out[key+"_count"] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	return out
}
