package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/orders"
)

// OrderReader is the read side of the orders repository the handler needs.
type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*orders.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*orders.Order, error)
}

type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(reader OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: reader, timeout: timeout}
}

// List returns the caller's order history, newest first.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	account := accountFromContext(r.Context())

	list, err := h.orders.ListOrdersByUserID(ctx, account.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if list == nil {
		list = []*orders.Order{}
	}

	respondJSON(w, http.StatusOK, list)
}
