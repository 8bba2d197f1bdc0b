package port

import "context"

// PublishHandle tracks a single submitted message. Wait blocks until the
// broker acknowledges it and returns the broker-assigned message id.
type PublishHandle interface {
	Wait(ctx context.Context) (string, error)
}

// Publisher hands payloads to a message broker topic without waiting for
// acknowledgement. Only client-side failures are reported by Publish.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) (PublishHandle, error)
	Close(ctx context.Context) error
}
