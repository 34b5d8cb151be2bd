package cart

import (
	"context"
	"errors"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// Repository defines the document-store operations for per-user carts.
// Consumers define this interface, not the MongoDB implementation.
type Repository interface {
	GetItems(ctx context.Context, userID string) ([]Item, error)
	ReplaceItems(ctx context.Context, userID string, items []Item) error
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	DeleteCart(ctx context.Context, userID string) error
}
