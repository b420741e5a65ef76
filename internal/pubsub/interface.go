package pubsub

import "context"

// PubSubClient publishes sync requests and decodes the ones pushed back to us.
type PubSubClient interface {
	SendMessage(ctx context.Context, topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close() error
}
