package http

import (
	"github.com/gofiber/fiber/v3"

	"github.com/nalin/ethereum-pubsub/internal/core/port"
)

// StatusReporter is the part of the listener the health endpoint reads.
type StatusReporter interface {
	Status() port.ListenerStatus
}

type healthResponse struct {
	Status string `json:"status"`
	port.ListenerStatus
}

// Health reports UP with the listener heights once the poll loop runs, and
// 503 before that or after it stopped.
func Health(listener StatusReporter) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		st := listener.Status()
		resp := healthResponse{Status: "UP", ListenerStatus: st}
		code := fiber.StatusOK
		if !st.Running {
			resp.Status = "DOWN"
			code = fiber.StatusServiceUnavailable
		}
		return ctx.Status(code).JSON(resp)
	}
}
