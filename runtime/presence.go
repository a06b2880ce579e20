package runtime

import (
	"context"
	"log/slog"

	"chat-hub/contract"
	"chat-hub/domain/event"
)

// Presence publishes the online-identity snapshot to every live connection.
//
// Full-snapshot, not incremental: cost is O(connections) per membership
// change, which is acceptable for a single-instance hub. Delivery is best
// effort; a sink that refuses the event is skipped.
type Presence struct {
	registry contract.SessionRegistry
	log      *slog.Logger
}

func NewPresence(log *slog.Logger, registry contract.SessionRegistry) *Presence {
	return &Presence{registry: registry, log: log}
}

// Publish computes the snapshot after the triggering registry mutation has
// been applied, so no broadcast ever observes a half-updated set.
func (p *Presence) Publish(ctx context.Context) {
	snapshot := event.OnlinePresence{Identities: p.registry.OnlineIdentities()}
	for _, sink := range p.registry.AllSinks() {
		if err := sink.Consume(ctx, snapshot); err != nil {
			p.log.Debug("presence broadcast skipped a sink", "error", err)
		}
	}
}
