package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/checkout"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/payment"
)

// CheckoutService is the slice of the checkout service the handler calls.
type CheckoutService interface {
	Begin(ctx context.Context, userID string) (checkout.Session, error)
	Current(userID string) (checkout.Session, error)
	Next(userID string) (checkout.Session, error)
	Back(userID string) (checkout.Session, error)
	SaveAddress(ctx context.Context, userID string, addr checkout.Address) error
	SavedAddress(ctx context.Context, userID string) (*checkout.Address, error)
	DisplayTotal(ctx context.Context, userID string) (float64, error)
	SubmitPayment(ctx context.Context, userID string, card payment.Card) (checkout.Session, error)
}

type CheckoutHandler struct {
	checkouts CheckoutService
	timeout   time.Duration
}

func NewCheckoutHandler(checkouts CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts, timeout: timeout}
}

type SubmitPaymentRequestDTO struct {
	Card payment.Card `json:"card"`
}

type DisplayTotalResponseDTO struct {
	Total float64 `json:"total"`
}

// Begin starts the wizard; an empty cart is refused before entry.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	account := accountFromContext(r.Context())

	session, err := h.checkouts.Begin(ctx, account.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (h *CheckoutHandler) Current(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	session, err := h.checkouts.Current(account.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	session, err := h.checkouts.Next(account.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	session, err := h.checkouts.Back(account.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) SaveAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	account := accountFromContext(r.Context())

	var addr checkout.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := addr.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_address", err.Error())
		return
	}

	if err := h.checkouts.SaveAddress(ctx, account.UID, addr); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addr)
}

func (h *CheckoutHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	account := accountFromContext(r.Context())

	addr, err := h.checkouts.SavedAddress(ctx, account.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addr)
}

func (h *CheckoutHandler) Total(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	account := accountFromContext(r.Context())

	total, err := h.checkouts.DisplayTotal(ctx, account.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, DisplayTotalResponseDTO{Total: total})
}

// SubmitPayment runs the payment step. Failures come back on the session's
// payment state as well as the HTTP status; the client shows them inline.
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	account := accountFromContext(r.Context())

	var req SubmitPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Card.Number == "" || req.Card.ExpMonth == "" || req.Card.ExpYear == "" || req.Card.CVC == "" {
		respondError(w, http.StatusBadRequest, "invalid_card", "card number, expiry and cvc are required")
		return
	}

	session, err := h.checkouts.SubmitPayment(ctx, account.UID, req.Card)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}
