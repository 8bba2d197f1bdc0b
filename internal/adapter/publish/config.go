package publish

// PubSubConfig identifies the Google Cloud Pub/Sub topic messages go to.
// Endpoint overrides the API endpoint; the emulator is picked up from
// PUBSUB_EMULATOR_HOST by the client library.
type PubSubConfig struct {
	ProjectID string `validate:"required"`
	TopicID   string `validate:"required"`
	Endpoint  string `validate:"omitempty"`
}

// KafkaConfig captures the Kafka connectivity and buffering behavior for the publisher.
type KafkaConfig struct {
	Brokers            []string `validate:"required,min=1,dive,required"`
	Topic              string   `validate:"required"`
	ClientID           string   `validate:"required"`
	MaxBufferedRecords int      `validate:"omitempty,gte=1"`
}
