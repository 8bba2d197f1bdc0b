package infra

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/nalin/ethereum-pubsub/internal/adapter/store"
	"github.com/nalin/ethereum-pubsub/internal/core/port"
	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

// InitWatermarkStore builds the store selected by watermark.kind. The returned
// close function releases any connection the store holds.
func InitWatermarkStore(ctx context.Context, log applog.AppLogger, fsys afero.Fs, v *validator.Validate) (port.WatermarkStore, func() error, error) {
	noop := func() error { return nil }

	switch kind := strings.ToLower(viper.GetString("watermark.kind")); kind {
	case "file":
		s, err := store.NewFileWatermarkStore(log, fsys, store.FileConfig{Path: viper.GetString("watermark.file")}, v)
		if err != nil {
			return nil, noop, fmt.Errorf("infra: failed to init watermark store: %w", err)
		}
		return s, noop, nil
	case "redis":
		s, err := store.NewRedisWatermarkStore(log, v, loadRedisConfig())
		if err != nil {
			return nil, noop, fmt.Errorf("infra: failed to init watermark store: %w", err)
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, noop, fmt.Errorf("infra: failed to init watermark store: %w", err)
		}
		return s, s.Close, nil
	default:
		err := apperr.NewConfigErr(fmt.Sprintf("unknown watermark.kind %q (want file or redis)", kind), nil)
		return nil, noop, fmt.Errorf("infra: failed to init watermark store: %w", err)
	}
}

func loadRedisConfig() store.RedisConfig {
	return store.RedisConfig{
		Host:               viper.GetString("redis.host"),
		Port:               viper.GetString("redis.port"),
		Password:           viper.GetString("redis.password"),
		DB:                 viper.GetInt("redis.db"),
		UseTLS:             viper.GetBool("redis.use_tls"),
		DialTimeoutSeconds: viper.GetInt("redis.dial_timeout_seconds"),
		Key:                viper.GetString("redis.key"),
	}
}
