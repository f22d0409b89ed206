package storage

import (
	"context"
	"errors"
)

// ErrNotInitialized is returned by Load when the backing store has never
// been set up with Init.
var ErrNotInitialized = errors.New("storage not initialized, run 'softworkday init' first")

// ErrClosed is returned by operations on a store that has been closed or
// never loaded.
var ErrClosed = errors.New("storage is not open")

// Provider is the persistence port. Every record the application keeps is a
// single serialized blob addressed by key; a Set replaces the whole value.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Blobs
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error

	// Location describes where data lives, without credentials.
	Location() string
}
