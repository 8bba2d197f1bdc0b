package publish

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/go-playground/validator/v10"
	"google.golang.org/api/option"

	"github.com/nalin/ethereum-pubsub/internal/core/port"
	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
	imetrics "github.com/nalin/ethereum-pubsub/internal/pkg/metrics"
)

const kindPubSub = "pubsub"

// PubSubPublisher publishes transaction payloads to a Google Cloud Pub/Sub
// topic. The client library batches messages and publishes them in the
// background.
type PubSubPublisher struct {
	log    applog.AppLogger
	client *pubsub.Client
	topic  *pubsub.Topic
	cfg    PubSubConfig
}

// NewPubSubPublisher validates cfg and creates a client for
// projects/<ProjectID>/topics/<TopicID>. Extra client options are appended
// after the endpoint override.
func NewPubSubPublisher(ctx context.Context, log applog.AppLogger, cfg PubSubConfig, v *validator.Validate, opts ...option.ClientOption) (*PubSubPublisher, error) {
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewConfigErr("invalid pubsub publisher config", err)
	}

	var clientOpts []option.ClientOption
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, clientOpts...)
	if err != nil {
		return nil, apperr.NewConfigErr("failed to init pubsub client", err)
	}

	return &PubSubPublisher{
		log:    log,
		client: client,
		topic:  client.Topic(cfg.TopicID),
		cfg:    cfg,
	}, nil
}

// Publish queues payload on the topic without waiting for the server. A
// result that is already failed on return (topic stopped, message rejected
// by the client) is reported as PublishErr.
func (p *PubSubPublisher) Publish(ctx context.Context, payload []byte) (port.PublishHandle, error) {
	res := p.topic.Publish(ctx, &pubsub.Message{Data: payload})

	select {
	case <-res.Ready():
		if _, err := res.Get(ctx); err != nil {
			imetrics.Publisher().ErrorsTotal.WithLabelValues(kindPubSub).Inc()
			return nil, apperr.NewPublishErr("pubsub rejected message", err)
		}
	default:
	}

	imetrics.Publisher().SubmittedTotal.WithLabelValues(kindPubSub).Inc()
	imetrics.Publisher().PayloadBytes.Observe(float64(len(payload)))
	return pubsubHandle{res: res}, nil
}

// Close sends outstanding messages and releases the client.
func (p *PubSubPublisher) Close(context.Context) error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return apperr.NewPublishErr("failed to close pubsub client", err)
	}
	p.log.Info("Pub/Sub publisher closed", "topic", p.topic.String())
	return nil
}

type pubsubHandle struct {
	res *pubsub.PublishResult
}

// Wait returns the server-assigned message id.
func (h pubsubHandle) Wait(ctx context.Context) (string, error) {
	id, err := h.res.Get(ctx)
	if err != nil {
		return "", apperr.NewPublishErr("pubsub publish failed", err)
	}
	return id, nil
}
