// Package server exposes the hub over a WebSocket event channel.
// One connection per client; JSON envelopes both ways.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chat-hub/runtime"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

type Server struct {
	log       *slog.Logger
	lifecycle *runtime.Lifecycle
	messages  *runtime.MessageRelay
	signals   *runtime.SignalRelay
	upgrader  websocket.Upgrader
	validate  *validator.Validate

	connectionBufferSize int
	writeTimeout         time.Duration
}

func NewServer(log *slog.Logger, lifecycle *runtime.Lifecycle,
	messages *runtime.MessageRelay, signals *runtime.SignalRelay,
	connectionBufferSize int, writeTimeout time.Duration, allowedOrigin string) *Server {
	return &Server{
		log:       log,
		lifecycle: lifecycle,
		messages:  messages,
		signals:   signals,
		validate:  validator.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
		connectionBufferSize: connectionBufferSize,
		writeTimeout:         writeTimeout,
	}
}

// Handler returns the HTTP surface of the hub: the upgrade endpoint and a
// liveness probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// handleWS upgrades the connection and runs the session loops. The handler
// blocks until the client disconnects; the deferred cleanup inside
// readLoop unregisters the connection so the registry never leaks.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := newSession(s, conn)
	session.log.Info("connection established", "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(context.Background())
	go session.writeLoop(ctx)
	session.readLoop(ctx, cancel)
}
