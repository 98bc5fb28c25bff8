package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultKey is the storage key holding the bearer token.
const DefaultKey = "authToken"

// Storage is the persistent key-value capability the session needs.
// PebbleStore and DynamoStore in the repository package satisfy it.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store owns the single bearer token. It never caches the token: every Get
// goes back to storage so a logout from another process is observed.
type Store struct {
	storage Storage
	key     string
}

// KeyForProfile returns the storage key for a named profile. The empty and
// "default" profiles share DefaultKey.
func KeyForProfile(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" || profile == "default" {
		return DefaultKey
	}
	return DefaultKey + ":" + profile
}

// New creates a Store that keeps its token under key.
func New(storage Storage, key string) (*Store, error) {
	if storage == nil {
		return nil, errors.New("session: storage must not be nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("session: key must not be empty")
	}
	return &Store{storage: storage, key: key}, nil
}

// Get returns the current token. An empty stored value counts as absent.
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	v, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return "", false, fmt.Errorf("session: get: %w", err)
	}
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Set persists token, replacing any previous one.
func (s *Store) Set(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("session: token must not be empty")
	}
	if err := s.storage.Put(ctx, s.key, token); err != nil {
		return fmt.Errorf("session: set: %w", err)
	}
	return nil
}

// Clear removes the token. Clearing an absent token is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// MemoryStorage is a process-local Storage.
type MemoryStorage struct {
	mu   sync.RWMutex
	vals map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{vals: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *MemoryStorage) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vals, key)
	return nil
}
