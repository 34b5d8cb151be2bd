package payment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrPaymentUnavailable = errors.New("payment provider unavailable")
)

// Card holds the raw card details entered on the payment step. They are
// exchanged for a single-use token and never persisted.
type Card struct {
	Number   string `json:"number"`
	ExpMonth string `json:"expMonth"`
	ExpYear  string `json:"expYear"`
	CVC      string `json:"cvc"`
	Name     string `json:"name"`
}

// Record is what the storefront keeps about a completed payment: the token,
// never the card.
type Record struct {
	Method      string    `json:"method" bson:"method"`
	Token       string    `json:"token" bson:"token"`
	TotalAmount float64   `json:"totalAmount" bson:"total_amount"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

// Processor exchanges card details for a provider token.
type Processor interface {
	Tokenize(ctx context.Context, card Card) (string, error)
}

// Repository appends payment records per user.
type Repository interface {
	AppendPayment(ctx context.Context, userID string, rec Record) error
}
