package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"chat-hub/domain"
	"chat-hub/sink"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is one client connection. It starts anonymous (Unbound), becomes
// Bound on the first valid join and stays bound to that identity until the
// connection closes; a later join with a different id does not rebind.
type Session struct {
	id       uuid.UUID
	identity string
	conn     *websocket.Conn
	sink     *sink.ConnSink
	server   *Server
	log      *slog.Logger
}

func newSession(server *Server, conn *websocket.Conn) *Session {
	id := uuid.New()
	return &Session{
		id:     id,
		conn:   conn,
		sink:   sink.NewConnSink(server.log, server.connectionBufferSize),
		server: server,
		log:    server.log.With("connection_id", id),
	}
}

// readLoop decodes inbound envelopes until the connection drops, then
// triggers the disconnect cleanup. Cleanup runs on a fresh context: the
// request context is already dying at that point, and the offline
// broadcast must still go out.
func (s *Session) readLoop(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		cancel()
		_ = s.conn.Close()
		s.server.lifecycle.Disconnect(context.Background(), s.id)
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debug("connection closed", "error", err)
			return
		}
		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			s.log.Debug("malformed frame dropped", "error", err)
			continue
		}
		s.dispatch(ctx, envelope)
	}
}

// writeLoop drains the session sink and pushes frames to the client.
// A write error ends the loop; the read side notices the broken
// connection and performs the cleanup.
func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.sink.Outbound:
			envelope, err := encodeEvent(evt)
			if err != nil {
				s.log.Error("failed to encode outbound event", "error", err)
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.server.writeTimeout))
			if err := s.conn.WriteJSON(envelope); err != nil {
				s.log.Debug("failed to push event to connection", "event", envelope.Event, "error", err)
				return
			}
		}
	}
}

// dispatch routes one inbound envelope. Malformed payloads, unknown ids
// and forbidden operations are all dropped without a client-facing error.
func (s *Session) dispatch(ctx context.Context, envelope Envelope) {
	switch envelope.Event {
	case "join":
		var payload joinPayload
		if !s.decode(envelope, &payload) {
			return
		}
		if s.identity == "" {
			s.identity = payload.IdentityID
		}
		// Re-join keeps the original binding; registration is idempotent.
		s.server.lifecycle.Join(ctx, s.identity, s.id, s.sink)

	case "sendMessage":
		var payload sendMessagePayload
		if !s.decode(envelope, &payload) {
			return
		}
		_, err := s.server.messages.Send(ctx, s.sink,
			payload.SenderID, payload.ReceiverID, domain.MessageType(payload.Type), payload.Content)
		if err != nil {
			s.log.Error("sendMessage abandoned", "error", err)
		}

	case "typing":
		var payload typingPayload
		if !s.decode(envelope, &payload) {
			return
		}
		s.server.signals.Typing(ctx, payload.SenderID, payload.ReceiverID)

	case "stopTyping":
		var payload typingPayload
		if !s.decode(envelope, &payload) {
			return
		}
		s.server.signals.StopTyping(ctx, payload.SenderID, payload.ReceiverID)

	case "deleteMessage":
		var payload deleteMessagePayload
		if !s.decode(envelope, &payload) {
			return
		}
		messageID := uuid.MustParse(payload.ID)
		if err := s.server.messages.Delete(ctx, messageID, payload.SenderID); err != nil {
			s.log.Debug("deleteMessage rejected", "message_id", messageID, "error", err)
		}

	case "messageRead":
		var payload messageReadPayload
		if !s.decode(envelope, &payload) {
			return
		}
		messageID := uuid.MustParse(payload.MessageID)
		if err := s.server.messages.MarkRead(ctx, messageID, payload.ReaderID); err != nil {
			s.log.Debug("messageRead rejected", "message_id", messageID, "error", err)
		}

	default:
		s.log.Debug("unknown event dropped", "event", envelope.Event)
	}
}

// decode unmarshals and validates an inbound payload. False means the
// frame was malformed and has been dropped.
func (s *Session) decode(envelope Envelope, out any) bool {
	if err := json.Unmarshal(envelope.Payload, out); err != nil {
		s.log.Debug("malformed payload dropped", "event", envelope.Event, "error", err)
		return false
	}
	if err := s.server.validate.Struct(out); err != nil {
		s.log.Debug("invalid payload dropped", "event", envelope.Event, "error", err)
		return false
	}
	return true
}
