// Package kv provides the key-value store abstraction used for
// runtime-editable settings. Availability of a concrete store varies by
// deployment; callers must treat a nil Store as "no store bound".
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("kv: key not found")

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("kv: store unavailable")

// Store defines the interface for plain string key-value persistence.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Put stores value under key, overwriting any existing value.
	Put(ctx context.Context, key string, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all keys with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Close releases any resources held by the store.
	Close() error
}
