package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type captureSink struct {
	events []event.DomainEvent
}

func (s *captureSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.events = append(s.events, e)
	return nil
}

func TestRelay_Send_Delivers_To_All_Receiver_Connections_And_Echoes_Once(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	registry := NewRegistry()
	relay := NewMessageRelay(slog.Default(), store, registry)

	// Given B has two live connections and A has two devices
	senderDevice1 := &captureSink{}
	senderDevice2 := &captureSink{}
	receiverDevice1 := &captureSink{}
	receiverDevice2 := &captureSink{}
	registry.Register("A", uuid.New(), senderDevice1)
	registry.Register("A", uuid.New(), senderDevice2)
	registry.Register("B", uuid.New(), receiverDevice1)
	registry.Register("B", uuid.New(), receiverDevice2)

	store.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	// When A sends a message from its first device
	message, err := relay.Send(context.Background(), senderDevice1, "A", "B", domain.MessageTypeText, "hi")

	// Then both of B's connections got exactly one delivery
	req.NoError(err)
	req.Len(receiverDevice1.events, 1)
	req.Len(receiverDevice2.events, 1)
	req.Equal(event.MessageReceived{Message: message}, receiverDevice1.events[0])

	// And only the originating connection got the echo
	req.Len(senderDevice1.events, 1)
	req.Empty(senderDevice2.events)
}

func TestRelay_Send_Defaults_To_Text_And_Assigns_Id_And_Timestamp(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	registry := NewRegistry()
	relay := NewMessageRelay(slog.Default(), store, registry)

	var stored domain.Message
	store.EXPECT().Create(gomock.Any()).DoAndReturn(func(message domain.Message) error {
		stored = message
		return nil
	}).Times(1)

	// When the message type is omitted
	message, err := relay.Send(context.Background(), nil, "A", "B", "", "hi")

	// Then the stored record has a fresh id, a timestamp and the text type
	req.NoError(err)
	req.Equal(domain.MessageTypeText, stored.Type)
	req.NotEqual(uuid.Nil, stored.ID)
	req.False(stored.CreatedAt.IsZero())
	req.False(stored.IsDeleted)
	req.Nil(stored.ReadAt)
	req.Equal(stored, message)
}

func TestRelay_Send_To_Offline_Receiver_Only_Echoes(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	registry := NewRegistry()
	relay := NewMessageRelay(slog.Default(), store, registry)

	origin := &captureSink{}
	registry.Register("A", uuid.New(), origin)
	store.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	// When A sends to an offline B
	message, err := relay.Send(context.Background(), origin, "A", "B", domain.MessageTypeText, "hi")

	// Then the message is persisted and only the echo goes out
	req.NoError(err)
	req.False(message.IsDeleted)
	req.Nil(message.ReadAt)
	req.Len(origin.events, 1)
}

func TestRelay_Send_Persistence_Failure_Delivers_Nothing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	registry := NewRegistry()
	relay := NewMessageRelay(slog.Default(), store, registry)

	origin := &captureSink{}
	receiver := &captureSink{}
	registry.Register("A", uuid.New(), origin)
	registry.Register("B", uuid.New(), receiver)

	// Given the store fails
	store.EXPECT().Create(gomock.Any()).Return(fmt.Errorf("disk full")).Times(1)

	// When A sends a message
	_, err := relay.Send(context.Background(), origin, "A", "B", domain.MessageTypeText, "hi")

	// Then the operation is abandoned, nothing delivered, nothing echoed
	req.Error(err)
	req.Empty(origin.events)
	req.Empty(receiver.events)
}

func TestRelay_Delete_By_Sender_Notifies_Both_Participants(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	registry := NewRegistry()
	relay := NewMessageRelay(slog.Default(), store, registry)

	senderSink := &captureSink{}
	receiverSink := &captureSink{}
	registry.Register("A", uuid.New(), senderSink)
	registry.Register("B", uuid.New(), receiverSink)

	messageID := uuid.New()
	store.EXPECT().FindByID(messageID).
		Return(domain.Message{ID: messageID, SenderID: "A", ReceiverID: "B"}, nil).Times(1)
	store.EXPECT().MarkDeleted(messageID).Return(nil).Times(1)

	// When the sender deletes its message
	err := relay.Delete(context.Background(), messageID, "A")

	// Then both participants are notified with the message id
	req.NoError(err)
	req.Equal([]event.DomainEvent{event.MessageDeleted{ID: messageID}}, senderSink.events)
	req.Equal([]event.DomainEvent{event.MessageDeleted{ID: messageID}}, receiverSink.events)
}

// The client gets no rejection event for a forbidden delete; the relay only
// reports it to its caller.
func TestRelay_Delete_By_NonSender_Is_Silent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	registry := NewRegistry()
	relay := NewMessageRelay(slog.Default(), store, registry)

	senderSink := &captureSink{}
	receiverSink := &captureSink{}
	registry.Register("A", uuid.New(), senderSink)
	registry.Register("B", uuid.New(), receiverSink)

	messageID := uuid.New()
	store.EXPECT().FindByID(messageID).
		Return(domain.Message{ID: messageID, SenderID: "A", ReceiverID: "B"}, nil).Times(1)
	// And MarkDeleted must never be called

	// When the receiver tries to delete the sender's message
	err := relay.Delete(context.Background(), messageID, "B")

	// Then the relay refuses and nobody is notified
	req.ErrorIs(err, errors.ErrDeleteForbidden)
	req.Empty(senderSink.events)
	req.Empty(receiverSink.events)
}

func TestRelay_Delete_Unknown_Message(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	relay := NewMessageRelay(slog.Default(), store, NewRegistry())

	messageID := uuid.New()
	store.EXPECT().FindByID(messageID).Return(domain.Message{}, errors.ErrMessageNotFound).Times(1)

	err := relay.Delete(context.Background(), messageID, "A")
	req.ErrorIs(err, errors.ErrMessageNotFound)
}

func TestRelay_Delete_Twice_Notifies_Twice_Without_Error(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	registry := NewRegistry()
	relay := NewMessageRelay(slog.Default(), store, registry)

	senderSink := &captureSink{}
	registry.Register("A", uuid.New(), senderSink)

	messageID := uuid.New()
	record := domain.Message{ID: messageID, SenderID: "A", ReceiverID: "B"}
	deletedRecord := record
	deletedRecord.IsDeleted = true

	store.EXPECT().FindByID(messageID).Return(record, nil).Times(1)
	store.EXPECT().FindByID(messageID).Return(deletedRecord, nil).Times(1)
	store.EXPECT().MarkDeleted(messageID).Return(nil).Times(2)

	// When the sender deletes the same message twice
	req.NoError(relay.Delete(context.Background(), messageID, "A"))
	req.NoError(relay.Delete(context.Background(), messageID, "A"))

	// Then each call produced a notification
	req.Len(senderSink.events, 2)
}

func TestRelay_MarkRead_Notifies_Sender(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	registry := NewRegistry()
	relay := NewMessageRelay(slog.Default(), store, registry)

	senderSink := &captureSink{}
	readerSink := &captureSink{}
	registry.Register("A", uuid.New(), senderSink)
	registry.Register("B", uuid.New(), readerSink)

	messageID := uuid.New()
	store.EXPECT().FindByID(messageID).
		Return(domain.Message{ID: messageID, SenderID: "A", ReceiverID: "B"}, nil).Times(1)
	store.EXPECT().MarkRead(messageID, gomock.Any()).Return(nil).Times(1)

	// When the receiver reads the message
	err := relay.MarkRead(context.Background(), messageID, "B")

	// Then only the sender is notified, with the reader's id
	req.NoError(err)
	req.Equal([]event.DomainEvent{event.MessageRead{ID: messageID, ReaderID: "B"}}, senderSink.events)
	req.Empty(readerSink.events)
}

func TestRelay_MarkRead_Unknown_Message(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockMessageStore(ctrl)
	relay := NewMessageRelay(slog.Default(), store, NewRegistry())

	messageID := uuid.New()
	store.EXPECT().FindByID(messageID).Return(domain.Message{}, errors.ErrMessageNotFound).Times(1)

	err := relay.MarkRead(context.Background(), messageID, "B")
	req.ErrorIs(err, errors.ErrMessageNotFound)
}
