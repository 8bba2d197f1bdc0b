package infra

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/viper"

	"github.com/nalin/ethereum-pubsub/internal/adapter/http"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

func InitRoutes(server *fiber.App, listener http.StatusReporter) {
	server.Get("/health", http.Health(listener))
	MountMetrics(server)
}

// StartHTTP serves /health and /metrics on http.addr when http.enabled is set.
// The returned function shuts the server down.
func StartHTTP(log applog.AppLogger, wg *sync.WaitGroup, listener http.StatusReporter) func(context.Context) error {
	if !viper.GetBool("http.enabled") {
		return func(context.Context) error { return nil }
	}

	addr := viper.GetString("http.addr")
	server := fiber.New(fiber.Config{AppName: viper.GetString("service.name")})
	InitRoutes(server, listener)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			log.Warn("HTTP server error", "addr", addr, "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", addr)

	return server.ShutdownWithContext
}
