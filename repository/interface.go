package repository

import (
	"context"
)

// CartStorageInterface is device-local key/value storage for persisted carts.
// Values are opaque JSON documents; the store reads and writes them whole.
type CartStorageInterface interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}
