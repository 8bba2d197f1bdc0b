package store

import (
	"context"
	"net"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
)

func runMiniRedis(t *testing.T) (*miniredis.Miniredis, string, string) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	host, port, _ := net.SplitHostPort(s.Addr())
	return s, host, port
}

func newRedisStore(t *testing.T) (*RedisWatermarkStore, *miniredis.Miniredis) {
	t.Helper()
	mr, host, port := runMiniRedis(t)
	s, err := NewRedisWatermarkStore(testLogger{}, nil, RedisConfig{
		Host:               host,
		Port:               port,
		DialTimeoutSeconds: 1,
		Key:                "ethereum-pubsub:latest_block",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestNewRedisWatermarkStore_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  RedisConfig
	}{
		{name: "empty", cfg: RedisConfig{}},
		{name: "non numeric port", cfg: RedisConfig{Host: "localhost", Port: "redis", Key: "k"}},
		{name: "missing key", cfg: RedisConfig{Host: "localhost", Port: "6379"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRedisWatermarkStore(testLogger{}, nil, tt.cfg)
			var cfgErr *apperr.ConfigErr
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestRedisWatermarkStore_ReadWrite(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	_, ok, err := s.Read(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Write(ctx, 100))
	got, err := mr.Get("ethereum-pubsub:latest_block")
	require.NoError(t, err)
	require.Equal(t, "100", got)

	require.NoError(t, s.Write(ctx, 105))
	h, ok, err := s.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(105), h)
}

func TestRedisWatermarkStore_CorruptValue(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("ethereum-pubsub:latest_block", "not-a-number"))

	_, ok, err := s.Read(context.Background())
	require.False(t, ok)
	var wmErr *apperr.WatermarkStoreErr
	require.ErrorAs(t, err, &wmErr)
}

func TestRedisWatermarkStore_ServerDown(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()
	ctx := context.Background()

	_, _, err := s.Read(ctx)
	var wmErr *apperr.WatermarkStoreErr
	require.ErrorAs(t, err, &wmErr)

	err = s.Write(ctx, 1)
	require.ErrorAs(t, err, &wmErr)

	require.Error(t, s.Ping(ctx))
}
