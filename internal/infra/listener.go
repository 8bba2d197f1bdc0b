package infra

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/nalin/ethereum-pubsub/internal/core/port"
	"github.com/nalin/ethereum-pubsub/internal/core/usecase"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

// InitListener wires the poll loop with listener.* settings.
func InitListener(log applog.AppLogger, chain port.ChainClient, publisher port.Publisher, watermark port.WatermarkStore, v *validator.Validate) (*usecase.TxListenerService, error) {
	interval, err := duration("listener.poll_interval")
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init listener: %w", err)
	}

	cfg := usecase.ListenerConfig{
		PollInterval: interval,
		CatchUp:      viper.GetBool("listener.catch_up"),
	}
	l, err := usecase.NewTxListenerService(log, chain, publisher, watermark, cfg, v)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init listener: %w", err)
	}
	return l, nil
}
