package infra

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	imetrics "github.com/nalin/ethereum-pubsub/internal/pkg/metrics"
)

var promRegistry *prometheus.Registry

// InitMetrics creates the process registry and binds every collector group to
// it. Call it before any adapter is constructed.
func InitMetrics() *prometheus.Registry {
	if promRegistry != nil {
		return promRegistry
	}

	promRegistry = prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bi := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "service_build_info",
		Help: "build info",
		ConstLabels: prometheus.Labels{
			"service":  viper.GetString("service.name"),
			"instance": viper.GetString("service.instance"),
		},
	}, []string{"version", "rev"})
	promRegistry.MustRegister(bi)
	bi.WithLabelValues(Version, Revision).Set(1)

	imetrics.Bind(promRegistry)
	return promRegistry
}

// MountMetrics exposes the registry on GET /metrics.
func MountMetrics(app *fiber.App) {
	if app == nil {
		return
	}
	reg := InitMetrics()
	h := promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	app.Get("/metrics", adaptor.HTTPHandler(h))
}
