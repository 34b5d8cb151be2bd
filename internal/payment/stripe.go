package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// tokenCreator is the slice of the Stripe client the processor uses.
type tokenCreator interface {
	New(params *stripe.TokenParams) (*stripe.Token, error)
}

// StripeProcessor tokenizes cards through the Stripe tokens API.
type StripeProcessor struct {
	tokens tokenCreator
}

func NewStripeProcessor(apiKey string) *StripeProcessor {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeProcessor{tokens: sc.Tokens}
}

func (p *StripeProcessor) Tokenize(ctx context.Context, card Card) (string, error) {
	params := &stripe.TokenParams{
		Params: stripe.Params{Context: ctx},
		Card: &stripe.CardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.String(card.ExpMonth),
			ExpYear:  stripe.String(card.ExpYear),
			CVC:      stripe.String(card.CVC),
			Name:     stripe.String(card.Name),
		},
	}

	tok, err := p.tokens.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return "", fmt.Errorf("%w: %s", ErrPaymentDeclined, stripeErr.Msg)
		}
		return "", fmt.Errorf("failed to tokenize card: %w", err)
	}

	return tok.ID, nil
}
