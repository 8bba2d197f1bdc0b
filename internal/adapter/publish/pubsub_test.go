package publish

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
)

func newTestPubSubPublisher(t *testing.T) (*PubSubPublisher, *pstest.Server) {
	t.Helper()
	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	cfg := PubSubConfig{ProjectID: "test-project", TopicID: "transactions"}
	p, err := NewPubSubPublisher(ctx, testLogger{}, cfg, nil, option.WithGRPCConn(conn))
	require.NoError(t, err)

	_, err = p.client.CreateTopic(ctx, cfg.TopicID)
	require.NoError(t, err)
	return p, srv
}

func TestNewPubSubPublisher_InvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  PubSubConfig
	}{
		{name: "missing project", cfg: PubSubConfig{TopicID: "t"}},
		{name: "missing topic", cfg: PubSubConfig{ProjectID: "p"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPubSubPublisher(context.Background(), testLogger{}, tc.cfg, nil)
			var cfgErr *apperr.ConfigErr
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestPubSubPublisher_Publish(t *testing.T) {
	p, srv := newTestPubSubPublisher(t)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	ctx := context.Background()
	payload := []byte(`{"hash":"88df01","value":1000}`)

	h, err := p.Publish(ctx, payload)
	require.NoError(t, err)

	id, err := h.Wait(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, payload, msgs[0].Data)
	require.Empty(t, msgs[0].Attributes)
	require.Equal(t, id, msgs[0].ID)
}

func TestPubSubPublisher_PublishAfterClose(t *testing.T) {
	p, _ := newTestPubSubPublisher(t)
	ctx := context.Background()

	require.NoError(t, p.Close(ctx))

	h, err := p.Publish(ctx, []byte("x"))
	require.Nil(t, h)
	var pubErr *apperr.PublishErr
	require.ErrorAs(t, err, &pubErr)
}
