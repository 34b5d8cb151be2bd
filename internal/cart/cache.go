package cart

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cart not found in cache")

// Cache is the slice of the cart cache the service uses. The Redis
// implementation lives in internal/cache.
type Cache interface {
	Get(ctx context.Context, userID string) (*State, error)
	Set(ctx context.Context, userID string, state *State) error
	Delete(ctx context.Context, userID string) error
}
