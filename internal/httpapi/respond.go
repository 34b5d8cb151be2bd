package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/auth"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/cart"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/catalog"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/checkout"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/orders"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/payment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the services' sentinel errors onto HTTP codes at
// the boundary. Anything unrecognized is a 500 without leaking internals.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, checkout.ErrAddressNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, auth.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, auth.ErrEmailInUse),
		errors.Is(err, orders.ErrDuplicateCheckout):
		respondError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrCheckoutNotStarted):
		respondError(w, http.StatusConflict, "checkout_not_started", err.Error())
	case errors.Is(err, payment.ErrPaymentDeclined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", err.Error())
	case errors.Is(err, payment.ErrPaymentUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
