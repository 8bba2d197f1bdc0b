package store

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

// RedisWatermarkStore keeps the watermark under a single Redis key.
//
// Concurrency: safe for concurrent use through the go-redis client. Writes
// are a plain SET, so two listeners sharing a key overwrite each other.
type RedisWatermarkStore struct {
	rdb *redis.Client
	log applog.AppLogger
	key string
}

// NewRedisWatermarkStore creates a Redis client from the provided config,
// optionally enabling TLS.
func NewRedisWatermarkStore(log applog.AppLogger, v *validator.Validate, cfg RedisConfig) (*RedisWatermarkStore, error) {
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(cfg); err != nil {
		log.Error("invalid redis config", "err", err)
		return nil, apperr.NewConfigErr("invalid redis config", err)
	}

	opts := &redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: time.Duration(cfg.DialTimeoutSeconds) * time.Second,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return &RedisWatermarkStore{rdb: redis.NewClient(opts), log: log, key: cfg.Key}, nil
}

func (s *RedisWatermarkStore) Read(ctx context.Context) (uint64, bool, error) {
	val, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperr.NewWatermarkStoreErr("redis GET "+s.key+" failed", err)
	}

	h, err := parseHeight(val)
	if err != nil {
		return 0, false, apperr.NewWatermarkStoreErr("corrupt watermark at "+s.key, err)
	}
	return h, true, nil
}

func (s *RedisWatermarkStore) Write(ctx context.Context, height uint64) error {
	if err := s.rdb.Set(ctx, s.key, formatHeight(height), 0).Err(); err != nil {
		return apperr.NewWatermarkStoreErr("redis SET "+s.key+" failed", err)
	}
	s.log.Trace("Watermark persisted", "key", s.key, "height", height)
	return nil
}

// Ping checks connectivity; used at startup so a bad address fails fast.
func (s *RedisWatermarkStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return apperr.NewWatermarkStoreErr("redis ping failed", err)
	}
	return nil
}

func (s *RedisWatermarkStore) Close() error {
	return s.rdb.Close()
}
