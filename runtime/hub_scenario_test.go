package runtime

import (
	"context"
	"log/slog"
	"testing"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// End-to-end over the real stores: U1 sends "hi" while U2 is offline; the
// message survives in the store, only U1 sees the echo, and once U2 joins
// a history fetch returns the message.
func TestHub_Send_While_Receiver_Offline(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	log := slog.Default()
	registry := NewRegistry()
	messageStore := repositories.NewMessageRepository(db, log, nil)
	directory := repositories.NewIdentityRepository(db)
	presence := NewPresence(log, registry)
	relay := NewMessageRelay(log, messageStore, registry)
	lifecycle := NewLifecycle(log, registry, directory, presence)

	ctx := context.Background()

	// Given U1 joins while U2 is offline
	u1Sink := &captureSink{}
	lifecycle.Join(ctx, "U1", uuid.New(), u1Sink)

	// When U1 sends a message to U2
	message, err := relay.Send(ctx, u1Sink, "U1", "U2", domain.MessageTypeText, "hi")
	req.NoError(err)

	// Then the message is persisted untouched
	stored, err := messageStore.FindByID(message.ID)
	req.NoError(err)
	req.False(stored.IsDeleted)
	req.Nil(stored.ReadAt)
	req.Equal("hi", stored.Content)

	// And only U1's connection received the echo
	req.Equal([]event.DomainEvent{
		event.OnlinePresence{Identities: []string{"U1"}},
		event.MessageReceived{Message: message},
	}, u1Sink.events)

	// When U2 later joins
	u2Sink := &captureSink{}
	lifecycle.Join(ctx, "U2", uuid.New(), u2Sink)
	req.Equal([]event.OnlinePresence{{Identities: []string{"U1", "U2"}}}, presenceEvents(u2Sink))

	// Then a history fetch returns the message
	history, err := messageStore.ListConversation("U2", "U1")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(message.ID, history[0].ID)

	// And the directory reflects both identities online
	identity, err := directory.Find("U2")
	req.NoError(err)
	req.True(identity.Online)
}
