package messaging

import (
	"context"
	"io"
)

// Publisher is implemented by every transport the API can emit domain events on.
type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	io.Closer
}

// Noop drops every message. Used when MESSAGING_DRIVER=none.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

func (Noop) Close() error { return nil }

var (
	_ Publisher = (*NATSClient)(nil)
	_ Publisher = (*RabbitPublisher)(nil)
	_ Publisher = Noop{}
)
