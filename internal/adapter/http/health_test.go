package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/nalin/ethereum-pubsub/internal/core/port"
)

type fixedStatus port.ListenerStatus

func (s fixedStatus) Status() port.ListenerStatus { return port.ListenerStatus(s) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		status   port.ListenerStatus
		wantCode int
		want     string
	}{
		{
			name:     "running",
			status:   port.ListenerStatus{Running: true, LastProcessedHeight: 105, ChainHeight: 106},
			wantCode: fiber.StatusOK,
			want:     "UP",
		},
		{
			name:     "not running",
			status:   port.ListenerStatus{},
			wantCode: fiber.StatusServiceUnavailable,
			want:     "DOWN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", Health(fixedStatus(tt.status)))

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.wantCode, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var got map[string]any
			require.NoError(t, json.Unmarshal(body, &got))
			require.Equal(t, tt.want, got["status"])
			require.Equal(t, tt.status.Running, got["running"])
			require.EqualValues(t, tt.status.LastProcessedHeight, got["lastProcessedHeight"])
			require.EqualValues(t, tt.status.ChainHeight, got["chainHeight"])
		})
	}
}
