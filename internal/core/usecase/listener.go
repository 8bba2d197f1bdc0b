package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nalin/ethereum-pubsub/internal/core/port"
	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
	imetrics "github.com/nalin/ethereum-pubsub/internal/pkg/metrics"
)

// ListenerConfig controls the poll loop.
//
// CatchUp selects how a tick handles a chain that advanced by more than one
// block. When false (the default) only the newest block is processed and the
// transactions of the heights in between are never published. When true every
// height from the watermark up to the chain head is processed in order.
type ListenerConfig struct {
	PollInterval time.Duration `validate:"gt=0"`
	CatchUp      bool
}

// TxListenerService polls the chain head, publishes every transaction of each
// new block and checkpoints the block height once the whole block has been
// submitted. It runs on a single goroutine; Status is safe to call
// concurrently.
type TxListenerService struct {
	log       applog.AppLogger
	chain     port.ChainClient
	publisher port.Publisher
	watermark port.WatermarkStore
	cfg       ListenerConfig

	mu            sync.RWMutex
	lastProcessed uint64
	chainHeight   uint64
	running       bool
}

func NewTxListenerService(log applog.AppLogger, chain port.ChainClient, publisher port.Publisher, watermark port.WatermarkStore, cfg ListenerConfig, v *validator.Validate) (*TxListenerService, error) {
	if log == nil || chain == nil || publisher == nil || watermark == nil {
		return nil, apperr.NewInvalidArgErr("logger, chain client, publisher and watermark store are required", nil)
	}
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewConfigErr("invalid listener config", err)
	}
	return &TxListenerService{
		log:       log,
		chain:     chain,
		publisher: publisher,
		watermark: watermark,
		cfg:       cfg,
	}, nil
}

// Init loads the watermark. Without a stored watermark the listener starts at
// the current chain height, so history is never backfilled.
func (s *TxListenerService) Init(ctx context.Context) error {
	height, ok, err := s.watermark.Read(ctx)
	if err != nil {
		imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentWatermark, "read").Inc()
		return err
	}
	if ok {
		s.log.Info("Resuming from stored watermark", "number", height)
	} else {
		height, err = s.chain.CurrentHeight(ctx)
		if err != nil {
			imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentChain, "height").Inc()
			return err
		}
		s.log.Info("No stored watermark, starting at current chain height", "number", height)
	}

	s.mu.Lock()
	s.lastProcessed = height
	s.mu.Unlock()
	imetrics.Listener().LastProcessedHeight.Set(float64(height))
	return nil
}

// Run initializes the listener and then ticks every PollInterval until ctx is
// cancelled (returns nil) or a tick fails (returns the error).
func (s *TxListenerService) Run(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return err
	}

	s.setRunning(true)
	defer s.setRunning(false)
	s.log.Info("Listening for transactions...", "interval", s.cfg.PollInterval.String(), "catch_up", s.cfg.CatchUp)

	timer := time.NewTimer(s.cfg.PollInterval)
	defer timer.Stop()
	for {
		if err := s.Tick(ctx); err != nil {
			// Only the cancellation itself ends the loop quietly. Failures of
			// a block that kept running after cancel are still fatal.
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				s.log.Info("Listener stopped", "last_processed", s.LastProcessed())
				return nil
			}
			return err
		}

		timer.Reset(s.cfg.PollInterval)
		select {
		case <-ctx.Done():
			s.log.Info("Listener stopped", "last_processed", s.LastProcessed())
			return nil
		case <-timer.C:
		}
	}
}

// Tick compares the chain head with the watermark and processes new blocks.
// Block processing is detached from ctx cancellation so a started block is
// always either finished or failed, never abandoned halfway.
func (s *TxListenerService) Tick(ctx context.Context) error {
	current, err := s.chain.CurrentHeight(ctx)
	if err != nil {
		imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentChain, "height").Inc()
		return err
	}
	s.mu.Lock()
	s.chainHeight = current
	last := s.lastProcessed
	s.mu.Unlock()
	imetrics.Listener().ChainHeight.Set(float64(current))

	if current <= last {
		s.log.Trace("No new block", "chain", current, "last_processed", last)
		return nil
	}

	blockCtx := context.WithoutCancel(ctx)
	if !s.cfg.CatchUp {
		if skipped := current - last - 1; skipped > 0 {
			s.log.Warn("Chain advanced by more than one block, skipping intermediate blocks",
				"from", last+1, "to", current-1, "skipped", skipped)
			imetrics.Listener().SkippedBlocksTotal.Add(float64(skipped))
			imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentListener, "skipped_blocks").Inc()
		}
		return s.ProcessBlock(blockCtx, current)
	}

	for h := last + 1; h <= current; h++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.ProcessBlock(blockCtx, h); err != nil {
			return err
		}
	}
	return nil
}

// ProcessBlock publishes every transaction of the block at height, in block
// order, then persists height as the new watermark. Any failure is returned
// before the watermark is touched.
func (s *TxListenerService) ProcessBlock(ctx context.Context, height uint64) error {
	start := time.Now()

	block, err := s.chain.GetBlock(ctx, height)
	if err != nil {
		s.log.Error("Failed to fetch block", "number", height, "err", err)
		imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentChain, "block").Inc()
		return fmt.Errorf("process block %d: %w", height, err)
	}
	s.log.Info("New block", "number", height, "txs", len(block.Transactions))

	for i, hash := range block.Transactions {
		rec, err := s.chain.GetTransaction(ctx, hash)
		if err != nil {
			s.log.Error("Failed to fetch transaction", "number", height, "index", i, "hash", hash.Hex(), "err", err)
			imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentChain, "transaction").Inc()
			return fmt.Errorf("process block %d: %w", height, err)
		}

		payload, err := EncodeTransaction(rec)
		if err != nil {
			s.log.Error("Failed to encode transaction", "number", height, "hash", hash.Hex(), "err", err)
			imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentEncoder, "encode").Inc()
			return fmt.Errorf("process block %d: %w", height, err)
		}
		s.log.Info("Transaction", "number", height, "index", i, "payload", string(payload))

		if _, err := s.publisher.Publish(ctx, payload); err != nil {
			s.log.Error("Failed to publish transaction", "number", height, "hash", hash.Hex(), "err", err)
			imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentPublisher, "publish").Inc()
			return fmt.Errorf("process block %d: %w", height, err)
		}
		imetrics.Listener().PublishedTxsTotal.Inc()
	}

	if err := s.watermark.Write(ctx, height); err != nil {
		s.log.Error("Failed to persist watermark", "number", height, "err", err)
		imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentWatermark, "write").Inc()
		return fmt.Errorf("process block %d: %w", height, err)
	}

	s.mu.Lock()
	s.lastProcessed = height
	s.mu.Unlock()

	imetrics.Listener().LastProcessedHeight.Set(float64(height))
	imetrics.Listener().ProcessedBlocksTotal.Inc()
	imetrics.Listener().BlockProcessLatencyMS.Observe(float64(time.Since(start).Milliseconds()))
	s.log.Trace("Block processed", "number", height, "txs", len(block.Transactions), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *TxListenerService) LastProcessed() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastProcessed
}

func (s *TxListenerService) Status() port.ListenerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return port.ListenerStatus{
		Running:             s.running,
		LastProcessedHeight: s.lastProcessed,
		ChainHeight:         s.chainHeight,
	}
}

func (s *TxListenerService) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}
