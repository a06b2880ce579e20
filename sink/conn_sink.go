// Package sink provides per-connection event inboxes.
package sink

import (
	"context"
	"log/slog"

	"chat-hub/domain/event"
)

// ConnSink buffers outbound events for one connection. The transport's
// writer goroutine drains Outbound; the relay side never blocks on it.
type ConnSink struct {
	Outbound chan event.DomainEvent
	log      *slog.Logger
}

func NewConnSink(log *slog.Logger, bufferSize int) *ConnSink {
	return &ConnSink{
		Outbound: make(chan event.DomainEvent, bufferSize),
		log:      log,
	}
}

// Consume is called by the relays and the presence broadcaster.
// A full buffer means the client cannot keep up: the event is dropped,
// which is acceptable under fire-and-forget delivery.
func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Outbound <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Debug("sink backpressure, dropping event", "event", e.EventName())
		return nil
	}
}
