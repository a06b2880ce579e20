package runtime

import (
	"context"
	"log/slog"

	"chat-hub/contract"
	"chat-hub/domain/event"
)

// SignalRelay forwards typing indicators to the receiver's connections.
// Nothing is persisted and nothing is acknowledged: if the receiver has no
// live connection the signal evaporates.
type SignalRelay struct {
	registry contract.SessionRegistry
	log      *slog.Logger
}

func NewSignalRelay(log *slog.Logger, registry contract.SessionRegistry) *SignalRelay {
	return &SignalRelay{registry: registry, log: log}
}

func (s *SignalRelay) Typing(ctx context.Context, senderID, receiverID string) {
	s.forward(ctx, receiverID, event.TypingStarted{SenderID: senderID})
}

func (s *SignalRelay) StopTyping(ctx context.Context, senderID, receiverID string) {
	s.forward(ctx, receiverID, event.TypingStopped{SenderID: senderID})
}

func (s *SignalRelay) forward(ctx context.Context, receiverID string, e event.DomainEvent) {
	for _, sink := range s.registry.SinksFor(receiverID) {
		if err := sink.Consume(ctx, e); err != nil {
			s.log.Debug("typing signal dropped", "receiver_id", receiverID, "error", err)
		}
	}
}
