package sink

import (
	"context"
	"log/slog"
	"testing"

	"chat-hub/domain/event"

	"github.com/stretchr/testify/require"
)

func TestConnSink_Buffers_Events(t *testing.T) {
	req := require.New(t)
	connSink := NewConnSink(slog.Default(), 2)

	req.NoError(connSink.Consume(context.Background(), event.TypingStarted{SenderID: "A"}))
	req.NoError(connSink.Consume(context.Background(), event.TypingStopped{SenderID: "A"}))

	req.Equal(event.TypingStarted{SenderID: "A"}, <-connSink.Outbound)
	req.Equal(event.TypingStopped{SenderID: "A"}, <-connSink.Outbound)
}

func TestConnSink_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	connSink := NewConnSink(slog.Default(), 1)

	// Given a full buffer
	req.NoError(connSink.Consume(context.Background(), event.TypingStarted{SenderID: "A"}))

	// When another event arrives
	req.NoError(connSink.Consume(context.Background(), event.TypingStarted{SenderID: "B"}))

	// Then it was dropped, not queued
	req.Equal(event.TypingStarted{SenderID: "A"}, <-connSink.Outbound)
	req.Empty(connSink.Outbound)
}
