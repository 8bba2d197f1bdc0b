package infra

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/nalin/ethereum-pubsub/internal/adapter/publish"
	"github.com/nalin/ethereum-pubsub/internal/core/port"
	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

// InitPublisher builds the publisher selected by publisher.kind.
func InitPublisher(ctx context.Context, log applog.AppLogger, v *validator.Validate) (port.Publisher, error) {
	var (
		p   port.Publisher
		err error
	)
	switch kind := strings.ToLower(viper.GetString("publisher.kind")); kind {
	case "pubsub":
		p, err = publish.NewPubSubPublisher(ctx, log, publish.PubSubConfig{
			ProjectID: viper.GetString("pubsub.project_id"),
			TopicID:   viper.GetString("pubsub.topic_id"),
			Endpoint:  viper.GetString("pubsub.endpoint"),
		}, v)
	case "kafka":
		p, err = publish.NewKafkaPublisher(log, publish.KafkaConfig{
			Brokers:            stringSlice("kafka.brokers"),
			Topic:              viper.GetString("kafka.topic"),
			ClientID:           viper.GetString("kafka.client_id"),
			MaxBufferedRecords: viper.GetInt("kafka.max_buffered_records"),
		}, v)
	default:
		err = apperr.NewConfigErr(fmt.Sprintf("unknown publisher.kind %q (want pubsub or kafka)", kind), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init publisher: %w", err)
	}
	return p, nil
}
