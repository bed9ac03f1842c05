// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	noop := defaultNoopMetrics()
	noop.GetOrCreateCountMeter("c").Add(1)
	noop.GetOrCreateGaugeVecMeter("g", []string{"a"}).SetWithLabel(1, map[string]string{"a": "b"})
	noop.GetOrCreateHistogramMeter("h", nil).Observe(1)

	rec := httptest.NewRecorder()
	noop.GetOrCreateHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	ops := CounterVec("ops_total", []string{"op", "result"})
	pools := Gauge("pools")
	tvl := GaugeVec("pool_points", []string{"pool"})
	latency := HistogramVec("op_duration_ms", []string{"op"}, BucketOpsMs)

	ops.AddWithLabel(2, map[string]string{"op": "bond", "result": "ok"})
	CounterVec("ops_total", []string{"op", "result"}).AddWithLabel(1, map[string]string{"op": "bond", "result": "ok"})
	pools.Set(3)
	pools.Add(-1)
	tvl.SetWithLabel(10, map[string]string{"pool": "1"})
	tvl.AddWithLabel(5, map[string]string{"pool": "1"})
	latency.ObserveWithLabels(7, map[string]string{"op": "bond"})

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, float64(3), values["lst_ops_total"])
	assert.Equal(t, float64(2), values["lst_pools"])
	assert.Equal(t, float64(15), values["lst_pool_points"])
	assert.Equal(t, float64(1), values["lst_op_duration_ms"])

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "lst_ops_total")
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	f := LazyLoad(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, calls)
}
