// SPDX-License-Identifier: MIT

package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

func TestCollector_Training(t *testing.T) {
	c, err := NewCollector(nextTestNamespace(), nil, zap.NewNop())
	require.NoError(t, err)

	c.ObserveEpisode("hotspot", 9.5, 3)
	c.ObserveEpisode("hotspot", -1, 100)
	c.ObserveEpisode("superspot", 10, 1)
	c.ObserveFragment("hotspot", 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.episodesTotal.WithLabelValues("hotspot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.episodesTotal.WithLabelValues("superspot")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.episodeReward))
	assert.Equal(t, 1, testutil.CollectAndCount(c.fragmentSize))
}

func TestCollector_Dispatch(t *testing.T) {
	ns := nextTestNamespace()
	c, err := NewCollector(ns, nil, zap.NewNop())
	require.NoError(t, err)

	c.ObserveRequest(true, "completed", 18)
	c.ObserveRequest(true, "completed", 16)
	c.ObserveRequest(true, "expired", 6)
	c.ObserveRequest(false, "completed", 17)
	c.ObserveMerge("accepted")
	c.ObserveMerge("conflict")
	c.ObserveMerge("accepted")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("true", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("false", "completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.mergesTotal.WithLabelValues("accepted")))

	sum := c.Summary()
	assert.Equal(t, 1.0, sum[ns+"_merge_decisions_total{outcome=conflict}"])
	assert.Equal(t, 1.0, sum[ns+"_requests_total{ride_sharing=true}{status=expired}"])
	assert.Equal(t, 2.0, sum[ns+"_request_latency_minutes{ride_sharing=true}{status=completed}_count"])
	assert.Equal(t, 1.0, sum[ns+"_request_latency_minutes{ride_sharing=false}{status=completed}_count"])
}

func TestCollector_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	ns := nextTestNamespace()
	_, err := NewCollector(ns, reg, zap.NewNop())
	require.NoError(t, err)

	_, err = NewCollector(ns, reg, zap.NewNop())
	assert.Error(t, err, "duplicate registration must fail")
}
