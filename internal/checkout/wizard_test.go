package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWizard_LinearFlow(t *testing.T) {
	w := NewWizard()
	assert.Equal(t, StepAddress, w.Step)

	w = w.Next()
	assert.Equal(t, StepReview, w.Step)

	w = w.Next()
	assert.Equal(t, StepPayment, w.Step)

	// Next from the last form step is a no-op.
	w = w.Next()
	assert.Equal(t, StepPayment, w.Step)
}

func TestWizard_BackAtFirstStepIsNoOp(t *testing.T) {
	w := NewWizard()
	w = w.Back()
	assert.Equal(t, StepAddress, w.Step)
}

func TestWizard_PaymentSucceededFromAnyStep(t *testing.T) {
	for _, start := range []Step{StepAddress, StepReview, StepPayment} {
		w := Wizard{Step: start}
		w = w.PaymentSucceeded()
		assert.Equal(t, StepSuccess, w.Step, "from step %v", start)
	}
}

func TestWizard_SuccessIsTerminal(t *testing.T) {
	w := NewWizard().PaymentSucceeded()

	assert.Equal(t, StepSuccess, w.Next().Step)
	assert.Equal(t, StepSuccess, w.Back().Step)
}

func TestDisplayTotal(t *testing.T) {
	// Base total on the address step, surcharge afterwards.
	assert.Equal(t, 100.0, DisplayTotal(100, 20, StepAddress))
	assert.Equal(t, 120.0, DisplayTotal(100, 20, StepReview))
	assert.Equal(t, 120.0, DisplayTotal(100, 20, StepPayment))

	// An empty cart is never charged shipping.
	assert.Equal(t, 0.0, DisplayTotal(0, 20, StepReview))
}
