// Package storage is the key/value port that stands in for the browser's
// local storage: one blob per key, shared by every tab of a session.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: key not found")

// KV is implemented by the memory, Redis and Mongo backends.
// A zero ttl keeps the value until it is overwritten or deleted.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Event announces that another writer changed a key.
// A nil or JSON null NewValue means the key was removed.
type Event struct {
	Key      string          `json:"key"`
	NewValue json.RawMessage `json:"newValue"`
	Origin   string          `json:"origin,omitempty"`
}

// Removed reports whether the event carries no value.
func (e Event) Removed() bool {
	return len(e.NewValue) == 0 || string(e.NewValue) == "null"
}
