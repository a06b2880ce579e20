// Package runtime hosts the realtime hub: session registry, presence
// broadcasting and the relays that move messages and signals between
// connections. It holds no business rules about message content.
package runtime

import (
	"sort"
	"sync"

	"chat-hub/contract"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type connectionSet map[uuid.UUID]struct{}

// Registry tracks which connections belong to which identity.
// It performs a two-map bookkeeping:
//  1. bindings: identity -> set of connection ids (presence source of truth)
//  2. sinks/owners: connection id -> its sink and owning identity
//
// An identity is online iff its connection set is non-empty. The registry
// keeps no durable state: after a restart clients must re-join.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]connectionSet
	sinks    map[uuid.UUID]contract.EventSink
	owners   map[uuid.UUID]string
}

func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]connectionSet),
		sinks:    make(map[uuid.UUID]contract.EventSink),
		owners:   make(map[uuid.UUID]string),
	}
}

// Register binds a connection to an identity, creating the identity's
// connection set on the fly. Registering the same connection twice is a
// no-op. Returns true when the identity had no live connection before.
func (r *Registry) Register(identityID string, connectionID uuid.UUID, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, existed := r.bindings[identityID]
	if !existed {
		set = make(connectionSet)
		r.bindings[identityID] = set
	}
	set[connectionID] = struct{}{}
	r.sinks[connectionID] = sink
	r.owners[connectionID] = identityID
	return !existed
}

// Unregister removes a connection from whichever identity owns it and
// cleans up empty sets to prevent the bindings map from leaking over time.
// wentOffline reports whether this was the identity's last connection.
func (r *Registry) Unregister(connectionID uuid.UUID) (string, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identityID, found := r.owners[connectionID]
	if !found {
		return "", false, false
	}
	delete(r.owners, connectionID)
	delete(r.sinks, connectionID)

	wentOffline := false
	if set, ok := r.bindings[identityID]; ok {
		delete(set, connectionID)
		if len(set) == 0 {
			delete(r.bindings, identityID)
			wentOffline = true
		}
	}
	return identityID, wentOffline, true
}

// SinksFor resolves an identity to its live sinks. Nil means the identity
// is currently offline, which is a valid state, not an error.
func (r *Registry) SinksFor(identityID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.bindings[identityID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(set))
	for connectionID := range set {
		if sink, exists := r.sinks[connectionID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// AllSinks returns every live sink, bound or not to an identity.
func (r *Registry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Values(r.sinks)
}

// OnlineIdentities returns the sorted presence snapshot.
func (r *Registry) OnlineIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := lo.Keys(r.bindings)
	sort.Strings(identities)
	return identities
}

// Stats reports the current registry size for telemetry.
func (r *Registry) Stats() (identities, connections int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings), len(r.sinks)
}
