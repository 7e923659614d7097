package storage

import (
	"context"
)

// Backend persists report artifacts. The destination is always supplied by
// the caller; a backend never picks a location on its own.
type Backend interface {
	// Put stores data under key and returns the final location.
	Put(ctx context.Context, key string, data []byte) (string, error)
}
