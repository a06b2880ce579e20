package runtime

import (
	"context"
	"log/slog"
	"time"

	"chat-hub/contract"

	"github.com/google/uuid"
)

// Lifecycle binds and unbinds connections. It is the only component that
// writes to the IdentityDirectory, and it does so after the registry
// mutation has been applied, so presence snapshots never run ahead of
// membership.
//
// Directory writes are best effort: a failed setOnline/setOffline is
// logged and abandoned, never retried, and never blocks the broadcast.
type Lifecycle struct {
	registry  contract.SessionRegistry
	directory contract.IdentityDirectory
	presence  *Presence
	log       *slog.Logger
	now       func() time.Time
}

func NewLifecycle(log *slog.Logger, registry contract.SessionRegistry,
	directory contract.IdentityDirectory, presence *Presence) *Lifecycle {
	return &Lifecycle{
		registry:  registry,
		directory: directory,
		presence:  presence,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Join registers the connection under identityID, marks the identity online
// in the directory and broadcasts presence. Re-join of an already bound
// connection is an idempotent re-registration.
func (l *Lifecycle) Join(ctx context.Context, identityID string, connectionID uuid.UUID, sink contract.EventSink) {
	cameOnline := l.registry.Register(identityID, connectionID, sink)
	if err := l.directory.SetOnline(identityID, l.now()); err != nil {
		l.log.Error("directory setOnline failed", "identity_id", identityID, "error", err)
	}
	if cameOnline {
		l.log.Info("identity came online", "identity_id", identityID)
	}
	l.presence.Publish(ctx)
}

// Disconnect removes the connection. Only when the identity's last
// connection disappears is the directory updated and presence re-broadcast;
// closing one device of a multi-device identity is invisible to others.
func (l *Lifecycle) Disconnect(ctx context.Context, connectionID uuid.UUID) {
	identityID, wentOffline, found := l.registry.Unregister(connectionID)
	if !found {
		// Connection was never bound; nothing to clean up.
		return
	}
	if !wentOffline {
		return
	}
	if err := l.directory.SetOffline(identityID, l.now()); err != nil {
		l.log.Error("directory setOffline failed", "identity_id", identityID, "error", err)
	}
	l.log.Info("identity went offline", "identity_id", identityID)
	l.presence.Publish(ctx)
}
