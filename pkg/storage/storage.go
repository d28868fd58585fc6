// Package storage defines the key/value contract persisted form lists sit on
// and ships in-memory and directory backed implementations.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrInvalidKey is returned for empty keys or keys a backend cannot map.
	ErrInvalidKey = errors.New("storage: invalid key")
	// ErrClosed is returned after a backend has been closed.
	ErrClosed = errors.New("storage: backend closed")
)

// KV is an atomic key/value store. Get reports ok=false for missing keys;
// Delete of a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func checkKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
