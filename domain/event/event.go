// Package event defines the outbound events fanned out to connected clients.
// Events are values; they carry everything a sink needs and are never
// mutated after creation.
package event

import (
	"chat-hub/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything that can be pushed to a client connection.
// EventName is the wire-level event discriminator.
type DomainEvent interface {
	EventName() string
}

// MessageReceived carries a freshly persisted message to the receiver's
// connections and, as an echo, to the originating connection.
type MessageReceived struct {
	Message domain.Message
}

func (MessageReceived) EventName() string { return "receiveMessage" }

// MessageDeleted notifies both participants that a message was soft-deleted.
type MessageDeleted struct {
	ID uuid.UUID
}

func (MessageDeleted) EventName() string { return "messageDeleted" }

// MessageRead notifies the original sender that a message has been read.
type MessageRead struct {
	ID       uuid.UUID
	ReaderID string
}

func (MessageRead) EventName() string { return "messageRead" }

// TypingStarted and TypingStopped are ephemeral: not persisted, not
// acknowledged, delivery is best effort.
type TypingStarted struct {
	SenderID string
}

func (TypingStarted) EventName() string { return "typing" }

type TypingStopped struct {
	SenderID string
}

func (TypingStopped) EventName() string { return "stopTyping" }

// OnlinePresence is the full snapshot of identities with at least one live
// connection, broadcast to everyone on membership change.
type OnlinePresence struct {
	Identities []string
}

func (OnlinePresence) EventName() string { return "onlineUsers" }
