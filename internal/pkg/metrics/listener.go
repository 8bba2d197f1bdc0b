package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ListenerMetrics struct {
	ProcessedBlocksTotal  prometheus.Counter
	SkippedBlocksTotal    prometheus.Counter
	PublishedTxsTotal     prometheus.Counter
	LastProcessedHeight   prometheus.Gauge
	ChainHeight           prometheus.Gauge
	BlockProcessLatencyMS prometheus.Histogram
}

var (
	listenerOnce sync.Once
	listener     *ListenerMetrics
)

func Listener() *ListenerMetrics {
	listenerOnce.Do(func() {
		r := Registerer()
		listener = &ListenerMetrics{
			ProcessedBlocksTotal: promauto.With(r).NewCounter(prometheus.CounterOpts{
				Name: "listener_processed_blocks_total",
				Help: "blocks whose transactions were all submitted for publish",
			}),
			SkippedBlocksTotal: promauto.With(r).NewCounter(prometheus.CounterOpts{
				Name: "listener_skipped_blocks_total",
				Help: "heights jumped over because the chain advanced more than one block between ticks",
			}),
			PublishedTxsTotal: promauto.With(r).NewCounter(prometheus.CounterOpts{
				Name: "listener_published_transactions_total",
				Help: "transactions handed to the publisher",
			}),
			LastProcessedHeight: promauto.With(r).NewGauge(prometheus.GaugeOpts{
				Name: "listener_last_processed_height",
				Help: "persisted watermark",
			}),
			ChainHeight: promauto.With(r).NewGauge(prometheus.GaugeOpts{
				Name: "listener_chain_height",
				Help: "latest chain height observed by the poll loop",
			}),
			BlockProcessLatencyMS: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
				Name:    "listener_block_process_latency_ms",
				Help:    "time to fetch, encode, publish and checkpoint one block (ms)",
				Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
			}),
		}
	})
	return listener
}
