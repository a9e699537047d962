// Package memory provides a thread-safe in-memory implementation of kv.Store.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/YoungLee-coder/coshub/kv"
)

// Store is a thread-safe in-memory implementation of kv.Store.
// Suitable for testing and single-process ephemeral deployments.
type Store struct {
	mu   sync.RWMutex
	data map[string]string

	// failing, when set, makes every operation return kv.ErrUnavailable.
	// Tests use it to simulate an unreachable backing store.
	failing bool
}

var _ kv.Store = (*Store)(nil)

// NewStore creates a new empty in-memory Store.
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// SetFailing toggles simulated store unavailability.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return "", kv.ErrUnavailable
	}
	value, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, kv.ErrNotFound)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return kv.ErrUnavailable
	}
	s.data[key] = value
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return kv.ErrUnavailable
	}
	delete(s.data, key)
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return nil, kv.ErrUnavailable
	}
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
