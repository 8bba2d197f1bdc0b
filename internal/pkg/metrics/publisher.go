package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PublisherMetrics struct {
	SubmittedTotal *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	PayloadBytes   prometheus.Histogram
}

var (
	publisherOnce sync.Once
	publisher     *PublisherMetrics
)

func Publisher() *PublisherMetrics {
	publisherOnce.Do(func() {
		r := Registerer()
		publisher = &PublisherMetrics{
			SubmittedTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{Name: "publisher_submitted_total", Help: "messages handed to the broker client"},
				[]string{"kind"},
			),
			ErrorsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{Name: "publisher_errors_total", Help: "client-side publish failures"},
				[]string{"kind"},
			),
			PayloadBytes: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
				Name:    "publisher_payload_bytes",
				Help:    "size of published payloads",
				Buckets: prometheus.ExponentialBuckets(256, 2, 10),
			}),
		}
	})
	return publisher
}
