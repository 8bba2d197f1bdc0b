package publish

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/nalin/ethereum-pubsub/internal/core/port"
	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
	imetrics "github.com/nalin/ethereum-pubsub/internal/pkg/metrics"
)

const (
	kindKafka                 = "kafka"
	defaultMaxBufferedRecords = 10000
)

type kgoClient interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	BufferedProduceRecords() int64
	Flush(ctx context.Context) error
	Close()
}

var newKgoClient = func(opts ...kgo.Opt) (kgoClient, error) { return kgo.NewClient(opts...) }

// KafkaPublisher hands transaction payloads to a Kafka topic. Records are
// buffered by the client and delivered in the background.
type KafkaPublisher struct {
	log         applog.AppLogger
	client      kgoClient
	cfg         KafkaConfig
	maxBuffered int64
	closed      atomic.Bool
}

// NewKafkaPublisher builds a Kafka-backed publisher with validated configuration.
func NewKafkaPublisher(log applog.AppLogger, cfg KafkaConfig, v *validator.Validate) (*KafkaPublisher, error) {
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewConfigErr("invalid kafka publisher config", err)
	}

	maxBuffered := cfg.MaxBufferedRecords
	if maxBuffered == 0 {
		maxBuffered = defaultMaxBufferedRecords
	}

	client, err := newKgoClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.MaxBufferedRecords(maxBuffered),
	)
	if err != nil {
		return nil, apperr.NewConfigErr("failed to init kafka client", err)
	}

	return &KafkaPublisher{log: log, client: client, cfg: cfg, maxBuffered: int64(maxBuffered)}, nil
}

// Publish buffers payload for delivery. Only failures known at submission
// time (buffer full, client closed) are returned; delivery errors surface
// through the handle and are logged.
//
// kgo completes TryProduce promises on its own goroutine, so buffer capacity
// is checked here before handing the record over. The listener is the only
// producer, which keeps the check and the produce call from racing.
func (kp *KafkaPublisher) Publish(ctx context.Context, payload []byte) (port.PublishHandle, error) {
	if kp.closed.Load() {
		return nil, kp.reject(kgo.ErrClientClosed)
	}
	if kp.client.BufferedProduceRecords() >= kp.maxBuffered {
		return nil, kp.reject(kgo.ErrMaxBuffered)
	}

	h := &kafkaHandle{done: make(chan struct{}), log: kp.log, topic: kp.cfg.Topic}
	rec := &kgo.Record{Topic: kp.cfg.Topic, Value: payload}
	kp.client.TryProduce(ctx, rec, h.complete)

	imetrics.Publisher().SubmittedTotal.WithLabelValues(kindKafka).Inc()
	imetrics.Publisher().PayloadBytes.Observe(float64(len(payload)))
	return h, nil
}

func (kp *KafkaPublisher) reject(err error) error {
	imetrics.Publisher().ErrorsTotal.WithLabelValues(kindKafka).Inc()
	kp.log.Warn("Kafka rejected message", "topic", kp.cfg.Topic, "err", err)
	return apperr.NewPublishErr("kafka rejected message", err)
}

// Close flushes buffered records and closes the client.
func (kp *KafkaPublisher) Close(ctx context.Context) error {
	kp.closed.Store(true)
	defer kp.client.Close()
	if err := kp.client.Flush(ctx); err != nil {
		return apperr.NewPublishErr("failed to flush kafka records", err)
	}
	return nil
}

type kafkaHandle struct {
	log       applog.AppLogger
	done      chan struct{}
	topic     string
	partition int32
	offset    int64
	err       error
}

func (h *kafkaHandle) complete(r *kgo.Record, err error) {
	if r != nil {
		h.topic, h.partition, h.offset = r.Topic, r.Partition, r.Offset
	}
	h.err = err
	if err != nil {
		imetrics.Publisher().ErrorsTotal.WithLabelValues(kindKafka).Inc()
		h.log.Warn("Kafka delivery failed", "topic", h.topic, "retriable", shouldRetry(err), "err", err)
	}
	close(h.done)
}

// Wait returns "<topic>/<partition>/<offset>" once the broker acknowledged the record.
func (h *kafkaHandle) Wait(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-h.done:
	}
	if h.err != nil {
		return "", apperr.NewPublishErr("kafka delivery failed", h.err)
	}
	return fmt.Sprintf("%s/%d/%d", h.topic, h.partition, h.offset), nil
}

// shouldRetry reports whether a delivery failure is transient; the client
// already retried it internally, so this only feeds logging.
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	if kerr.IsRetriable(err) {
		return true
	}
	return errors.Is(err, kerr.UnknownTopicOrPartition)
}
