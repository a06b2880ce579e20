package server

import (
	"encoding/json"
	"testing"
	"time"

	"chat-hub/domain"
	"chat-hub/domain/event"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEncodeEvent_WireNames(t *testing.T) {
	req := require.New(t)
	messageID := uuid.New()

	cases := []struct {
		evt      event.DomainEvent
		name     string
		expected string
	}{
		{event.TypingStarted{SenderID: "A"}, "typing", `{"senderId":"A"}`},
		{event.TypingStopped{SenderID: "A"}, "stopTyping", `{"senderId":"A"}`},
		{event.MessageDeleted{ID: messageID}, "messageDeleted", `{"id":"` + messageID.String() + `"}`},
		{event.MessageRead{ID: messageID, ReaderID: "B"}, "messageRead", `{"id":"` + messageID.String() + `","readerId":"B"}`},
		{event.OnlinePresence{Identities: []string{"A", "B"}}, "onlineUsers", `["A","B"]`},
		{event.OnlinePresence{}, "onlineUsers", `[]`},
	}
	for _, c := range cases {
		envelope, err := encodeEvent(c.evt)
		req.NoError(err)
		req.Equal(c.name, envelope.Event)
		req.JSONEq(c.expected, string(envelope.Payload))
	}
}

func TestEncodeEvent_MessageReceived_Carries_Full_Record(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   "A",
		ReceiverID: "B",
		Type:       domain.MessageTypeText,
		Content:    "hi",
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	envelope, err := encodeEvent(event.MessageReceived{Message: message})
	req.NoError(err)
	req.Equal("receiveMessage", envelope.Event)

	var decoded domain.Message
	req.NoError(json.Unmarshal(envelope.Payload, &decoded))
	req.Equal(message, decoded)
}

func TestInboundPayload_Validation(t *testing.T) {
	req := require.New(t)
	validate := validator.New()

	// Required fields present
	req.NoError(validate.Struct(sendMessagePayload{SenderID: "A", ReceiverID: "B", Content: "hi"}))
	req.NoError(validate.Struct(sendMessagePayload{SenderID: "A", ReceiverID: "B", Content: "x", Type: "image"}))
	req.NoError(validate.Struct(messageReadPayload{MessageID: uuid.NewString(), ReaderID: "B"}))
	req.NoError(validate.Struct(deleteMessagePayload{ID: uuid.NewString(), SenderID: "A"}))

	// Missing or malformed fields are rejected
	req.Error(validate.Struct(joinPayload{}))
	req.Error(validate.Struct(sendMessagePayload{SenderID: "A", ReceiverID: "B"}))
	req.Error(validate.Struct(sendMessagePayload{SenderID: "A", ReceiverID: "B", Content: "x", Type: "video"}))
	req.Error(validate.Struct(deleteMessagePayload{ID: "not-a-uuid", SenderID: "A"}))
	req.Error(validate.Struct(messageReadPayload{MessageID: uuid.NewString()}))
}

func TestEnvelope_Decode(t *testing.T) {
	req := require.New(t)

	var envelope Envelope
	raw := `{"event":"sendMessage","payload":{"senderId":"A","receiverId":"B","content":"hi","type":"text"}}`
	req.NoError(json.Unmarshal([]byte(raw), &envelope))
	req.Equal("sendMessage", envelope.Event)

	var payload sendMessagePayload
	req.NoError(json.Unmarshal(envelope.Payload, &payload))
	req.Equal(sendMessagePayload{SenderID: "A", ReceiverID: "B", Content: "hi", Type: "text"}, payload)
}
