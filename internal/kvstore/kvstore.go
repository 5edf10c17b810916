package kvstore

import "context"

// Store is a durable key-value store. Values are opaque strings; the
// services above it keep JSON-serialized documents per key.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
	Close() error
}
