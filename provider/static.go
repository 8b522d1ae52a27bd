// Package provider contains identity store implementations.
package provider

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"

	"github.com/vireoco/authgate"
)

// StaticStore is an in memory identity store seeded with fixed user
// records. Meant for demos, local development, and tests; production
// deployments plug their own IdentityStore in.
type StaticStore struct {
	mu    sync.RWMutex
	users map[string]authgate.UserRecord
}

// NewStaticStore creates an empty static identity store.
func NewStaticStore() *StaticStore {
	return &StaticStore{
		users: map[string]authgate.UserRecord{},
	}
}

// Add registers a user, hashing the given plaintext secret. Usernames are
// matched case insensitively.
func (s *StaticStore) Add(record authgate.UserRecord, secret string) error {
	hash, err := authgate.HashSecret(secret)
	if err != nil {
		return err
	}

	record.SecretHash = hash

	s.mu.Lock()
	s.users[strings.ToLower(record.Name)] = record
	s.mu.Unlock()

	return nil
}

// AddHashed registers a user whose SecretHash is already computed.
func (s *StaticStore) AddHashed(record authgate.UserRecord) {
	s.mu.Lock()
	s.users[strings.ToLower(record.Name)] = record
	s.mu.Unlock()
}

func (s *StaticStore) Fetch(_ context.Context, username string) (*authgate.UserRecord, error) {
	s.mu.RLock()
	record, ok := s.users[strings.ToLower(username)]
	s.mu.RUnlock()

	if !ok {
		return nil, errors.New("user not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)
	}

	return &record, nil
}

// DemoStore returns a store seeded with the stock demo account.
func DemoStore() (*StaticStore, error) {
	store := NewStaticStore()

	err := store.Add(authgate.UserRecord{
		ID:    "a0260853-0ef6-4bc7-b4df-c8a5cb0dd0b4",
		Name:  "alice",
		Email: "alice@example.com",
		Roles: []string{"test"},
	}, "guess")
	if err != nil {
		return nil, err
	}

	return store, nil
}
