package runtime

import (
	"context"
	"log/slog"
	"testing"

	"chat-hub/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSignalRelay_Typing_Reaches_All_Receiver_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	relay := NewSignalRelay(slog.Default(), registry)

	// Given B on two devices and a connected sender
	senderSink := &captureSink{}
	receiverDevice1 := &captureSink{}
	receiverDevice2 := &captureSink{}
	registry.Register("A", uuid.New(), senderSink)
	registry.Register("B", uuid.New(), receiverDevice1)
	registry.Register("B", uuid.New(), receiverDevice2)

	// When A starts then stops typing
	relay.Typing(context.Background(), "A", "B")
	relay.StopTyping(context.Background(), "A", "B")

	// Then both of B's devices saw both signals, the sender none
	expected := []event.DomainEvent{
		event.TypingStarted{SenderID: "A"},
		event.TypingStopped{SenderID: "A"},
	}
	req.Equal(expected, receiverDevice1.events)
	req.Equal(expected, receiverDevice2.events)
	req.Empty(senderSink.events)
}

func TestSignalRelay_Typing_To_Offline_Receiver_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	relay := NewSignalRelay(slog.Default(), registry)

	senderSink := &captureSink{}
	registry.Register("A", uuid.New(), senderSink)

	// When A types at an offline B
	relay.Typing(context.Background(), "A", "B")

	// Then nothing happens anywhere
	req.Empty(senderSink.events)
}
