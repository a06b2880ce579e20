//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// EventSink is one client connection's inbox. Consume must not block the
// caller: a sink that cannot keep up drops the event.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// SessionRegistry is the single source of truth for "who is reachable now".
// It maps identities to their live connections. All mutation-then-read
// sequences (register -> snapshot) are observed atomically by other callers.
type SessionRegistry interface {
	// Register binds a connection to an identity. Idempotent on a duplicate
	// connection id. Reports whether the identity just came online.
	Register(identityID string, connectionID uuid.UUID, sink EventSink) (cameOnline bool)
	// Unregister removes a connection from whichever identity owns it.
	// wentOffline reports whether that identity's connection set became empty.
	Unregister(connectionID uuid.UUID) (identityID string, wentOffline bool, found bool)
	// SinksFor returns the live sinks of one identity, nil if offline.
	SinksFor(identityID string) []EventSink
	// AllSinks returns every live sink, regardless of identity.
	AllSinks() []EventSink
	// OnlineIdentities returns the sorted ids with a non-empty connection set.
	OnlineIdentities() []string
}

// MessageStore is the durable store of message records (external collaborator).
type MessageStore interface {
	Create(message domain.Message) error
	FindByID(id uuid.UUID) (domain.Message, error)
	// MarkDeleted sets IsDeleted. Re-marking an already deleted message is not an error.
	MarkDeleted(id uuid.UUID) error
	// MarkRead sets ReadAt to `at` only if currently absent.
	MarkRead(id uuid.UUID, at time.Time) error
}

// IdentityDirectory is the durable store of identity online/offline state
// (external collaborator).
type IdentityDirectory interface {
	SetOnline(identityID string, at time.Time) error
	SetOffline(identityID string, at time.Time) error
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type Supervisor interface {
	Add(worker ...Worker) Supervisor
	Run(ctx context.Context)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
