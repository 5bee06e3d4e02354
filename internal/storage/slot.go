package storage

import (
	"context"
	"errors"
)

var ErrSlotNotFound = errors.New("slot not found")

// Slot is a durable key-value cell holding one serialized cart.
// Consumers define this interface, not the backends.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

const keyPrefix = "haven_cart"

// CartKey returns the slot key of a profile's cart.
func CartKey(profileID string) string {
	return keyPrefix + ":" + profileID
}
