// Package memory provides in-memory implementations of storage.UserStore
// and storage.CounterStore for testing and lightweight deployments. Data
// is lost when the process restarts.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gigbuddy/gigbuddy/pkg/api"
	"github.com/gigbuddy/gigbuddy/pkg/storage"
)

// Store is an in-memory UserStore and CounterStore.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*api.User
	byEmail  map[string]uuid.UUID // key is lowercased email
	counters map[string]int64
}

// Compile-time interface checks.
var (
	_ storage.UserStore    = (*Store)(nil)
	_ storage.CounterStore = (*Store)(nil)
)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*api.User),
		byEmail:  make(map[string]uuid.UUID),
		counters: make(map[string]int64),
	}
}

// FindByEmail returns the user whose email matches case-insensitively.
func (s *Store) FindByEmail(_ context.Context, email string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// FindByID returns the user with the given ID.
func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// Save persists a new user. The email must be unique case-insensitively.
func (s *Store) Save(_ context.Context, user *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return storage.ErrConflict
	}
	if _, exists := s.users[user.ID]; exists {
		return storage.ErrConflict
	}

	copied := *user
	s.users[user.ID] = &copied
	s.byEmail[key] = user.ID
	return nil
}

// Increment adds one to the named counter and returns the new value.
func (s *Store) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key]++
	return s.counters[key], nil
}
