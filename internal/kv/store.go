// Package kv is a small per-key document store. Notification inboxes and
// notification settings live here, one JSON document per user.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("kv: key not found")

	// ErrConflict is returned by Update when the key kept changing under it.
	ErrConflict = errors.New("kv: too many concurrent updates")
)

// UpdateFunc receives the current value (nil when the key is missing) and
// returns the value to store. A non-nil error aborts the update and is
// returned unchanged. It may run more than once.
type UpdateFunc func(current []byte) ([]byte, error)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Update is an atomic read-modify-write of key. Concurrent writers,
	// including other processes sharing the backend, cannot interleave
	// between the read and the write.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
