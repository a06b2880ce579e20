package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"

	"github.com/google/uuid"
)

// MessageRelay orchestrates persist-then-deliver for new messages and for
// delete/read state changes. Delivery to a connection is fire-and-forget:
// no delivery acknowledgment is tracked, and a connection that vanished
// between lookup and delivery is a silent no-op.
type MessageRelay struct {
	store    contract.MessageStore
	registry contract.SessionRegistry
	log      *slog.Logger
	now      func() time.Time
}

func NewMessageRelay(log *slog.Logger, store contract.MessageStore, registry contract.SessionRegistry) *MessageRelay {
	return &MessageRelay{
		store:    store,
		registry: registry,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Send persists a new message, fans it out to every live connection of the
// receiver, and echoes it back to the originating connection so the sender
// sees the server-assigned id and timestamp. The sender's other devices do
// not receive the echo.
//
// Persistence failure aborts the whole operation: nothing is delivered for
// a message that was never stored.
func (r *MessageRelay) Send(ctx context.Context, origin contract.EventSink,
	senderID, receiverID string, messageType domain.MessageType, content string) (domain.Message, error) {
	if messageType == "" {
		messageType = domain.MessageTypeText
	}
	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       messageType,
		Content:    content,
		CreatedAt:  r.now(),
	}
	if err := r.store.Create(message); err != nil {
		return domain.Message{}, fmt.Errorf("persist message: %w", err)
	}

	received := event.MessageReceived{Message: message}
	r.deliver(ctx, receiverID, received)
	if origin != nil {
		if err := origin.Consume(ctx, received); err != nil {
			r.log.Debug("echo to sender dropped", "message_id", message.ID, "error", err)
		}
	}
	return message, nil
}

// Delete soft-deletes a message on behalf of its sender and notifies every
// live connection of both participants. Only the sender may delete;
// re-deleting an already deleted message is allowed and re-notifies.
func (r *MessageRelay) Delete(ctx context.Context, messageID uuid.UUID, requesterID string) error {
	message, err := r.store.FindByID(messageID)
	if err != nil {
		return err
	}
	if message.SenderID != requesterID {
		return errors.ErrDeleteForbidden
	}
	if err := r.store.MarkDeleted(messageID); err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}

	deleted := event.MessageDeleted{ID: messageID}
	r.deliver(ctx, message.SenderID, deleted)
	if message.ReceiverID != message.SenderID {
		r.deliver(ctx, message.ReceiverID, deleted)
	}
	return nil
}

// MarkRead stamps ReadAt (first call wins, later calls are no-ops) and
// notifies the original sender's connections that the message was read.
func (r *MessageRelay) MarkRead(ctx context.Context, messageID uuid.UUID, readerID string) error {
	message, err := r.store.FindByID(messageID)
	if err != nil {
		return err
	}
	if err := r.store.MarkRead(messageID, r.now()); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	r.deliver(ctx, message.SenderID, event.MessageRead{ID: messageID, ReaderID: readerID})
	return nil
}

func (r *MessageRelay) deliver(ctx context.Context, identityID string, e event.DomainEvent) {
	for _, sink := range r.registry.SinksFor(identityID) {
		if err := sink.Consume(ctx, e); err != nil {
			r.log.Debug("delivery dropped", "identity_id", identityID, "event", e.EventName(), "error", err)
		}
	}
}
