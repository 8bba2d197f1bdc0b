package infra

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/nalin/ethereum-pubsub/internal/adapter/chain"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

// InitChainClient dials the Ethereum node configured under chain.*.
func InitChainClient(ctx context.Context, log applog.AppLogger, v *validator.Validate) (*chain.EthereumChainClient, error) {
	cfg := chain.Config{
		URL:                   viper.GetString("chain.url"),
		DialTimeoutSeconds:    viper.GetInt("chain.dial_timeout_seconds"),
		RequestTimeoutSeconds: viper.GetInt("chain.request_timeout_seconds"),
		MaxRetryAttempts:      viper.GetInt("chain.max_retry_attempts"),
		RetryInitialBackoffMS: viper.GetInt("chain.retry_initial_backoff_ms"),
		RetryMaxBackoffMS:     viper.GetInt("chain.retry_max_backoff_ms"),
	}

	c, err := chain.NewEthereumChainClient(ctx, log, cfg, v)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init chain client: %w", err)
	}
	return c, nil
}
