package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value has been stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// Store defines the interface for the persistent key-value store backing
// the to-do repository. Values are opaque bytes; callers own the encoding.
// This allows swapping between JSON file, Postgres, or other backends.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// Lifecycle
	Close() error
}
