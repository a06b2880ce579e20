package repositories

import (
	"testing"
	"time"

	"chat-hub/errors"

	"github.com/stretchr/testify/require"
)

func Test_SetOnline_Then_SetOffline(t *testing.T) {
	req := require.New(t)
	repository := NewIdentityRepository(openDB(t))

	onlineAt := time.Now().UTC()
	req.NoError(repository.SetOnline("alice", onlineAt))

	identity, err := repository.Find("alice")
	req.NoError(err)
	req.True(identity.Online)
	req.Equal(onlineAt, identity.LastSeen)

	offlineAt := onlineAt.Add(5 * time.Minute)
	req.NoError(repository.SetOffline("alice", offlineAt))

	identity, err = repository.Find("alice")
	req.NoError(err)
	req.False(identity.Online)
	req.Equal(offlineAt, identity.LastSeen)
}

func Test_Find_Unknown_Identity(t *testing.T) {
	req := require.New(t)
	repository := NewIdentityRepository(openDB(t))

	_, err := repository.Find("nobody")
	req.ErrorIs(err, errors.ErrIdentityNotFound)
}
