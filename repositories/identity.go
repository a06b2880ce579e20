//go:generate go run go.uber.org/mock/mockgen -source=identity.go -destination=../mocks/mock_identity_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"time"

	"chat-hub/domain"
	"chat-hub/errors"

	"github.com/dgraph-io/badger/v4"
)

type IIdentityRepository interface {
	SetOnline(identityID string, at time.Time) error
	SetOffline(identityID string, at time.Time) error
	Find(identityID string) (domain.Identity, error)
}

// IdentityRepository keeps the durable online flag and lastSeen timestamp
// of each identity under "identity:{id}". The registry never reads this;
// it exists for the surrounding system (profile pages, history UI).
type IdentityRepository struct {
	db *badger.DB
}

func NewIdentityRepository(db *badger.DB) IdentityRepository {
	return IdentityRepository{db: db}
}

func identityKey(identityID string) []byte {
	return []byte("identity:" + identityID)
}

func (r IdentityRepository) SetOnline(identityID string, at time.Time) error {
	return r.write(domain.Identity{ID: identityID, Online: true, LastSeen: at})
}

func (r IdentityRepository) SetOffline(identityID string, at time.Time) error {
	return r.write(domain.Identity{ID: identityID, Online: false, LastSeen: at})
}

func (r IdentityRepository) write(identity domain.Identity) error {
	bytes, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(identityKey(identity.ID), bytes)
	})
}

func (r IdentityRepository) Find(identityID string) (domain.Identity, error) {
	var identity domain.Identity
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(identityKey(identityID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrIdentityNotFound
			}
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &identity)
		})
	})
	return identity, err
}
