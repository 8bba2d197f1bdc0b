package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ChainMetrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestErrors    *prometheus.CounterVec
	RequestLatencyMS *prometheus.HistogramVec
}

var (
	chainOnce sync.Once
	chain     *ChainMetrics
)

func Chain() *ChainMetrics {
	chainOnce.Do(func() {
		r := Registerer()
		chain = &ChainMetrics{
			RequestsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{Name: "chain_rpc_requests_total", Help: "json-rpc requests by method"},
				[]string{"method"},
			),
			RequestErrors: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{Name: "chain_rpc_errors_total", Help: "json-rpc failures by method and class"},
				[]string{"method", "class"},
			),
			RequestLatencyMS: promauto.With(r).NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "chain_rpc_latency_ms",
					Help:    "json-rpc request latency (ms)",
					Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000},
				},
				[]string{"method"},
			),
		}
	})
	return chain
}
