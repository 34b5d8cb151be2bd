package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerProcessor shields the payment provider behind a circuit breaker.
// While the breaker is open callers fail fast with ErrPaymentUnavailable
// instead of piling requests onto a struggling provider. Declined cards are
// business outcomes, not provider failures, and do not trip the breaker.
type BreakerProcessor struct {
	next Processor
	cb   *gobreaker.CircuitBreaker[string]
}

func NewBreakerProcessor(next Processor) *BreakerProcessor {
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "payment-provider",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPaymentDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return &BreakerProcessor{next: next, cb: cb}
}

func (b *BreakerProcessor) Tokenize(ctx context.Context, card Card) (string, error) {
	token, err := b.cb.Execute(func() (string, error) {
		return b.next.Tokenize(ctx, card)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
		}
		return "", err
	}
	return token, nil
}
