package server

import (
	"encoding/json"
	"fmt"

	"chat-hub/domain/event"
)

// Envelope is the wire frame of the event channel, both directions:
//
//	{"event": "sendMessage", "payload": {...}}
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound payloads. A payload failing validation is a malformed frame and
// is dropped without notifying the client.

type joinPayload struct {
	IdentityID string `json:"identityId" validate:"required"`
}

type sendMessagePayload struct {
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required"`
	Type       string `json:"type" validate:"omitempty,oneof=text image"`
}

type typingPayload struct {
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
}

type deleteMessagePayload struct {
	ID         string `json:"id" validate:"required,uuid"`
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId"`
}

type messageReadPayload struct {
	MessageID string `json:"messageId" validate:"required,uuid"`
	ReaderID  string `json:"readerId" validate:"required"`
}

// Outbound payloads.

type typingNotice struct {
	SenderID string `json:"senderId"`
}

type messageDeletedNotice struct {
	ID string `json:"id"`
}

type messageReadNotice struct {
	ID       string `json:"id"`
	ReaderID string `json:"readerId"`
}

// encodeEvent turns a domain event into its wire envelope.
func encodeEvent(e event.DomainEvent) (Envelope, error) {
	var payload any
	switch evt := e.(type) {
	case event.MessageReceived:
		payload = evt.Message
	case event.MessageDeleted:
		payload = messageDeletedNotice{ID: evt.ID.String()}
	case event.MessageRead:
		payload = messageReadNotice{ID: evt.ID.String(), ReaderID: evt.ReaderID}
	case event.TypingStarted:
		payload = typingNotice{SenderID: evt.SenderID}
	case event.TypingStopped:
		payload = typingNotice{SenderID: evt.SenderID}
	case event.OnlinePresence:
		identities := evt.Identities
		if identities == nil {
			identities = []string{}
		}
		payload = identities
	default:
		return Envelope{}, fmt.Errorf("unmapped event type %T", e)
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: e.EventName(), Payload: bytes}, nil
}
