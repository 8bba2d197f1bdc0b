package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/nalin/ethereum-pubsub/internal/infra"
	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
)

func TestRootCmd_FlagsOverrideDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	cmd.RunE = func(*cobra.Command, []string) error { return nil }
	cmd.SetArgs([]string{"--rpc-url", "http://flag-node:8545", "--catch-up", "--poll-interval", "2s", "--publisher", "kafka"})
	require.NoError(t, cmd.Execute())

	require.Equal(t, "http://flag-node:8545", viper.GetString("chain.url"))
	require.True(t, viper.GetBool("listener.catch_up"))
	require.Equal(t, "2s", viper.GetString("listener.poll_interval"))
	require.Equal(t, "kafka", viper.GetString("publisher.kind"))
	require.Equal(t, "latest_block.txt", viper.GetString("watermark.file"))
}

func TestRun_MissingProviderIsFatal(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("ETHEREUM_PROVIDER_URL", "")
	require.NoError(t, infra.LoadConfig(""))
	viper.Set("log.level", "error")

	err := run(context.Background())
	var cfgErr *apperr.ConfigErr
	require.ErrorAs(t, err, &cfgErr)
}

// chainService advances the head from 100 to 101 after the first poll. Block
// 101 carries one transaction.
type chainService struct {
	mu    sync.Mutex
	polls int
}

var testTxHash = common.HexToHash("0x01")

func (s *chainService) BlockNumber() hexutil.Uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.polls == 1 {
		return 100
	}
	return 101
}

func (s *chainService) GetBlockByNumber(number hexutil.Uint64, _ bool) (json.RawMessage, error) {
	if number != 101 {
		return nil, nil
	}
	return json.Marshal(map[string]any{
		"number":       "0x65",
		"hash":         common.HexToHash("0xb101").Hex(),
		"transactions": []string{testTxHash.Hex()},
	})
}

func (s *chainService) GetTransactionByHash(hash common.Hash) (json.RawMessage, error) {
	return json.RawMessage(`{"hash":"` + hash.Hex() + `","value":"0x3e8","from":"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}`), nil
}

func TestRun_PublishesNewBlockAndPersistsWatermark(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	rpcSrv := rpc.NewServer()
	require.NoError(t, rpcSrv.RegisterName("eth", &chainService{}))
	node := httptest.NewServer(rpcSrv)
	t.Cleanup(node.Close)

	broker := pstest.NewServer()
	t.Cleanup(func() { _ = broker.Close() })
	t.Setenv("PUBSUB_EMULATOR_HOST", broker.Addr)

	admin, err := pubsub.NewClient(context.Background(), "test-project")
	require.NoError(t, err)
	_, err = admin.CreateTopic(context.Background(), "eth-transactions")
	require.NoError(t, err)
	require.NoError(t, admin.Close())

	watermarkFile := filepath.Join(t.TempDir(), "latest_block.txt")
	t.Setenv("ETHEREUM_PROVIDER_URL", node.URL)
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "test-project")
	t.Setenv("PUBSUB_TOPIC_ID", "eth-transactions")
	require.NoError(t, infra.LoadConfig(""))
	viper.Set("watermark.file", watermarkFile)
	viper.Set("listener.poll_interval", "10ms")
	viper.Set("log.level", "error")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx) }()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(watermarkFile)
		return err == nil && strings.TrimSpace(string(data)) == "101"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}

	msgs := broker.Messages()
	require.Len(t, msgs, 1)
	require.JSONEq(t,
		`{"hash":"`+strings.TrimPrefix(testTxHash.Hex(), "0x")+`","value":1000,"from":"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"}`,
		string(msgs[0].Data))
}
