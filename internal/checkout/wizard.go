package checkout

import (
	"github.com/google/uuid"
)

// Step indexes the linear checkout flow.
type Step int

const (
	StepAddress Step = iota
	StepReview
	StepPayment
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepReview:
		return "review"
	case StepPayment:
		return "payment"
	case StepSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Wizard is the pure state of one checkout run. Success is terminal: once
// reached, Next and Back stop moving the step.
type Wizard struct {
	CheckoutID uuid.UUID `json:"checkoutId"`
	Step       Step      `json:"step"`
}

func NewWizard() Wizard {
	return Wizard{CheckoutID: uuid.New(), Step: StepAddress}
}

// Next advances one step. A no-op on the last form step and after success.
func (w Wizard) Next() Wizard {
	if w.Step >= StepPayment {
		return w
	}
	w.Step++
	return w
}

// Back retreats one step. A no-op on the first step and after success.
func (w Wizard) Back() Wizard {
	if w.Step <= StepAddress || w.Step == StepSuccess {
		return w
	}
	w.Step--
	return w
}

// PaymentSucceeded forces the terminal state regardless of the current step.
func (w Wizard) PaymentSucceeded() Wizard {
	w.Step = StepSuccess
	return w
}

// PaymentState carries the transient outcome of the payment step. It is
// reset every time a checkout begins.
type PaymentState struct {
	Success bool   `json:"success"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// DisplayTotal is the amount shown to the user: the base cart total on the
// address step, base plus the shipping surcharge once past it. An empty cart
// stays at zero, shipping is never charged on nothing.
func DisplayTotal(base, shippingFee float64, step Step) float64 {
	if step <= StepAddress || base <= 0 {
		return base
	}
	return base + shippingFee
}
