//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chat-hub/domain"
	"chat-hub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Create(message domain.Message) error
	FindByID(id uuid.UUID) (domain.Message, error)
	MarkDeleted(id uuid.UUID) error
	MarkRead(id uuid.UUID, at time.Time) error
	ListConversation(a, b string) ([]domain.Message, error)
}

// MessageRepository persists messages in BadgerDB.
//
// Two keys per message:
//  1. "msg:{uuid}" holds the JSON record and serves point lookups.
//  2. "conv:{low}:{high}:{timestamp_padded}:{uuid}" is an index over the
//     (unordered) participant pair. The 19-digit zero-padded nanos make the
//     prefix scan chronological; the UUID suffix disconnects collisions if
//     two messages land on the same nanosecond.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

func messageKey(id uuid.UUID) []byte {
	return []byte("msg:" + id.String())
}

// conversationPrefix orders the pair so both directions of a conversation
// share one index prefix.
func conversationPrefix(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("conv:%s:%s:", a, b)
}

func conversationKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s",
		conversationPrefix(message.SenderID, message.ReceiverID),
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func (m MessageRepository) Create(message domain.Message) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(message.ID), bytes); err != nil {
			return err
		}
		return txn.Set(conversationKey(message), []byte(message.ID.String()))
	})
}

func (m MessageRepository) FindByID(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		return getMessage(txn, id, &message)
	})
	return message, err
}

// MarkDeleted flips IsDeleted to true. The transition is monotonic: an
// already deleted message stays deleted and the call succeeds.
func (m MessageRepository) MarkDeleted(id uuid.UUID) error {
	return m.update(id, func(message *domain.Message) bool {
		if message.IsDeleted {
			return false
		}
		message.IsDeleted = true
		return true
	})
}

// MarkRead stamps ReadAt once. Later calls keep the first timestamp.
func (m MessageRepository) MarkRead(id uuid.UUID, at time.Time) error {
	return m.update(id, func(message *domain.Message) bool {
		if message.ReadAt != nil {
			return false
		}
		message.ReadAt = &at
		return true
	})
}

// update applies mutate inside a single read-modify-write transaction.
// mutate returns false when the record is already in the target state,
// in which case nothing is rewritten.
func (m MessageRepository) update(id uuid.UUID, mutate func(*domain.Message) bool) error {
	return m.db.Update(func(txn *badger.Txn) error {
		var message domain.Message
		if err := getMessage(txn, id, &message); err != nil {
			return err
		}
		if !mutate(&message) {
			return nil
		}
		bytes, err := json.Marshal(message)
		if err != nil {
			return err
		}
		return txn.Set(messageKey(id), bytes)
	})
}

// ListConversation returns the full exchange between two identities in
// chronological order, both directions included, soft-deleted records too.
// It stops once the configured limit is reached.
func (m MessageRepository) ListConversation(a, b string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationPrefix(a, b))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			var id uuid.UUID
			err := it.Item().Value(func(value []byte) error {
				parsed, err := uuid.Parse(string(value))
				id = parsed
				return err
			})
			if err != nil {
				return err
			}
			var message domain.Message
			if err := getMessage(txn, id, &message); err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	return messages, err
}

func getMessage(txn *badger.Txn, id uuid.UUID, out *domain.Message) error {
	item, err := txn.Get(messageKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return errors.ErrMessageNotFound
		}
		return err
	}
	return item.Value(func(value []byte) error {
		return json.Unmarshal(value, out)
	})
}
