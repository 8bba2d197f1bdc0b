package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-playground/validator/v10"
	"github.com/nalin/ethereum-pubsub/internal/core/entity"
	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
	imetrics "github.com/nalin/ethereum-pubsub/internal/pkg/metrics"
	"github.com/nalin/ethereum-pubsub/internal/pkg/pattern"
)

const (
	defaultDialTimeout    = 10 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// EthereumChainClient reads block heights, blocks and transactions from an
// Ethereum JSON-RPC node.
//
// Transport failures are returned as apperr.ChainConnErr, JSON-RPC errors and
// missing blocks or transactions as apperr.ChainRpcErr.
type EthereumChainClient struct {
	log            applog.AppLogger
	rpc            *rpc.Client
	eth            *ethclient.Client
	requestTimeout time.Duration
	retryOpts      []pattern.RetryOption
}

// NewEthereumChainClient validates cfg and dials the node.
func NewEthereumChainClient(ctx context.Context, log applog.AppLogger, cfg Config, v *validator.Validate) (*EthereumChainClient, error) {
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewConfigErr("invalid chain client config", err)
	}

	dialTimeout := secondsOrDefault(cfg.DialTimeoutSeconds, defaultDialTimeout)
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	var client *rpc.Client
	err := pattern.Retry(dialCtx, func(attempt int) error {
		c, err := rpc.DialContext(dialCtx, cfg.URL)
		if err != nil {
			log.Warn("Ethereum dial failed", "attempt", attempt, "err", err)
			return err
		}
		client = c
		return nil
	}, retryOptionsFromConfig(cfg)...)
	if err != nil {
		return nil, apperr.NewChainConnErr("failed to dial ethereum node", err)
	}

	return newEthereumChainClient(log, cfg, client), nil
}

func newEthereumChainClient(log applog.AppLogger, cfg Config, client *rpc.Client) *EthereumChainClient {
	return &EthereumChainClient{
		log:            log,
		rpc:            client,
		eth:            ethclient.NewClient(client),
		requestTimeout: secondsOrDefault(cfg.RequestTimeoutSeconds, defaultRequestTimeout),
		retryOpts:      append(retryOptionsFromConfig(cfg), pattern.WithShouldRetry(isConnErr)),
	}
}

func retryOptionsFromConfig(cfg Config) []pattern.RetryOption {
	attempts := cfg.MaxRetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	opts := []pattern.RetryOption{pattern.WithMaxAttempts(attempts)}
	if cfg.RetryInitialBackoffMS > 0 {
		opts = append(opts, pattern.WithInitialDelay(time.Duration(cfg.RetryInitialBackoffMS)*time.Millisecond))
	}
	if cfg.RetryMaxBackoffMS > 0 {
		opts = append(opts, pattern.WithMaxDelay(time.Duration(cfg.RetryMaxBackoffMS)*time.Millisecond))
	}
	return opts
}

// CurrentHeight returns the latest block number known to the node.
func (c *EthereumChainClient) CurrentHeight(ctx context.Context) (uint64, error) {
	var height uint64
	err := c.call(ctx, "eth_blockNumber", func(ctx context.Context) error {
		h, err := c.eth.BlockNumber(ctx)
		height = h
		return err
	})
	return height, err
}

// GetBlock returns the block at height with its transaction hashes in
// inclusion order.
func (c *EthereumChainClient) GetBlock(ctx context.Context, height uint64) (*entity.BlockRef, error) {
	var raw json.RawMessage
	err := c.call(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &raw, "eth_getBlockByNumber", hexutil.EncodeUint64(height), false)
	})
	if err != nil {
		return nil, err
	}
	if isNullResult(raw) {
		return nil, apperr.NewChainRpcErr(fmt.Sprintf("block %d not found", height), ethereum.NotFound)
	}

	var body struct {
		Hash         common.Hash   `json:"hash"`
		Transactions []common.Hash `json:"transactions"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperr.NewChainRpcErr(fmt.Sprintf("malformed block %d", height), err)
	}
	return &entity.BlockRef{Number: height, Hash: body.Hash, Transactions: body.Transactions}, nil
}

// GetTransaction returns every field of the transaction as reported by the
// node, in the node's field order.
func (c *EthereumChainClient) GetTransaction(ctx context.Context, hash common.Hash) (*entity.TxRecord, error) {
	var raw json.RawMessage
	err := c.call(ctx, "eth_getTransactionByHash", func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &raw, "eth_getTransactionByHash", hash)
	})
	if err != nil {
		return nil, err
	}
	if isNullResult(raw) {
		return nil, apperr.NewChainRpcErr(fmt.Sprintf("transaction %s not found", hash.Hex()), ethereum.NotFound)
	}

	rec, err := decodeTransaction(raw)
	if err != nil {
		return nil, apperr.NewChainRpcErr(fmt.Sprintf("malformed transaction %s", hash.Hex()), err)
	}
	return rec, nil
}

func (c *EthereumChainClient) Close() {
	c.rpc.Close()
}

// call runs fn with a per-request timeout, classifies its error and retries
// connection failures when configured to.
func (c *EthereumChainClient) call(ctx context.Context, method string, fn func(context.Context) error) error {
	imetrics.Chain().RequestsTotal.WithLabelValues(method).Inc()
	start := time.Now()
	defer func() {
		imetrics.Chain().RequestLatencyMS.WithLabelValues(method).Observe(float64(time.Since(start).Milliseconds()))
	}()

	err := pattern.Retry(ctx, func(attempt int) error {
		reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()

		err := classifyChainError(method, fn(reqCtx))
		if err != nil {
			class := "rpc"
			if isConnErr(err) {
				class = "connection"
			}
			imetrics.Chain().RequestErrors.WithLabelValues(method, class).Inc()
			c.log.Warn("Ethereum request failed", "method", method, "attempt", attempt, "err", err)
		}
		return err
	}, c.retryOpts...)
	return classifyChainError(method, err)
}

func classifyChainError(method string, err error) error {
	if err == nil {
		return nil
	}
	var (
		appErr  apperr.BaseError
		rpcErr  rpc.Error
		httpErr rpc.HTTPError
		netErr  net.Error
	)
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ethereum.NotFound):
		return apperr.NewChainRpcErr(method+" returned no result", err)
	case errors.As(err, &rpcErr):
		return apperr.NewChainRpcErr(method+" failed", err)
	case errors.As(err, &httpErr),
		errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, rpc.ErrClientQuit):
		return apperr.NewChainConnErr(method+" failed", err)
	default:
		return apperr.NewChainRpcErr(method+" failed", err)
	}
}

func isConnErr(err error) bool {
	var ce *apperr.ChainConnErr
	return errors.As(err, &ce)
}

func isNullResult(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func secondsOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
