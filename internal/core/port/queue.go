package port

import "context"

// MessagePublisher publishes outbox messages to the broker. The boolean
// return is part of the contract: false means the publish did not happen,
// and callers must not assume anything beyond that.
type MessagePublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) bool
}

// EventConsumer is an interface to define an event consumer (nats, kafka, ...)
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService is an interface to define message handling
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}
