// Package memory provides an in-memory identity.Store for testing and
// lightweight deployments. Records are seeded at startup and lost when the
// process restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rhuss/pforte/pkg/identity"
)

// Store is an in-memory identity.Store.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*identity.Account // by account ID
	keys     map[string]*identity.APIKey  // by key hash
}

// Ensure Store implements identity.Store at compile time.
var _ identity.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		accounts: make(map[string]*identity.Account),
		keys:     make(map[string]*identity.APIKey),
	}
}

// AddAccount seeds an account record.
func (s *Store) AddAccount(a identity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = &a
}

// AddKey seeds an API key record, indexed by its stored hash.
func (s *Store) AddKey(k identity.APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[k.KeyHash] = &k
}

// FindAccountByID loads an account using the pipeline's projection: the
// password hash and lockout fields are left zero.
func (s *Store) FindAccountByID(_ context.Context, id string) (*identity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return projectAccount(a), nil
}

// FindActiveKeyByHash resolves an active key record and its owning account.
// Inactive key records are treated as absent.
func (s *Store) FindActiveKeyByHash(_ context.Context, hash string) (*identity.APIKey, *identity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[hash]
	if !ok || !k.Active {
		return nil, nil, identity.ErrNotFound
	}

	key := *k
	key.Permissions = append([]string(nil), k.Permissions...)

	account, ok := s.accounts[k.AccountID]
	if !ok {
		return &key, nil, nil
	}
	return &key, projectAccount(account), nil
}

// TouchKey updates the key record's last-used timestamp. Last-write-wins.
func (s *Store) TouchKey(_ context.Context, keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range s.keys {
		if k.ID == keyID {
			now := time.Now()
			k.LastUsedAt = &now
			return nil
		}
	}
	return identity.ErrNotFound
}

// LastUsed returns the key's last-used timestamp, for tests and diagnostics.
func (s *Store) LastUsed(keyID string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range s.keys {
		if k.ID == keyID {
			return k.LastUsedAt
		}
	}
	return nil
}

// projectAccount copies an account, excluding sensitive fields.
func projectAccount(a *identity.Account) *identity.Account {
	return &identity.Account{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}
