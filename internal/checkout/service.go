package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/cart"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/orders"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/payment"
)

var (
	ErrEmptyCart          = errors.New("cannot start checkout with an empty cart")
	ErrCheckoutNotStarted = errors.New("checkout has not been started")
)

const (
	paymentMethodCard = "creditCard"
	orderCurrency     = "USD"
)

// CartService is the slice of the cart service the checkout needs.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*cart.State, error)
	ClearCart(ctx context.Context, userID string) error
}

// Service drives the checkout wizard and orchestrates the payment step
// across the cart, payment and order collaborators.
type Service struct {
	store       *MemoryStore
	addresses   AddressRepository
	carts       CartService
	processor   payment.Processor
	payments    payment.Repository
	orders      orders.OrderRepository
	shippingFee float64
}

func NewService(
	store *MemoryStore,
	addresses AddressRepository,
	carts CartService,
	processor payment.Processor,
	payments payment.Repository,
	orderRepo orders.OrderRepository,
	shippingFee float64,
) *Service {
	return &Service{
		store:       store,
		addresses:   addresses,
		carts:       carts,
		processor:   processor,
		payments:    payments,
		orders:      orderRepo,
		shippingFee: shippingFee,
	}
}

// Begin starts a fresh checkout for the user. Entry is guarded: an empty
// cart is refused before the wizard ever starts, unless the user is looking
// at the success screen of a checkout that just completed.
func (s *Service) Begin(ctx context.Context, userID string) (Session, error) {
	state, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load cart for checkout: %w", err)
	}

	if len(state.Items) == 0 {
		if prev, ok := s.store.Get(userID); ok && prev.Payment.Success {
			return prev, nil
		}
		return Session{}, ErrEmptyCart
	}

	return s.store.Begin(userID), nil
}

// Current returns the user's live checkout session.
func (s *Service) Current(userID string) (Session, error) {
	session, ok := s.store.Get(userID)
	if !ok {
		return Session{}, ErrCheckoutNotStarted
	}
	return session, nil
}

func (s *Service) Next(userID string) (Session, error) {
	session, ok := s.store.Update(userID, func(sess Session) Session {
		sess.Wizard = sess.Wizard.Next()
		return sess
	})
	if !ok {
		return Session{}, ErrCheckoutNotStarted
	}
	return session, nil
}

func (s *Service) Back(userID string) (Session, error) {
	session, ok := s.store.Update(userID, func(sess Session) Session {
		sess.Wizard = sess.Wizard.Back()
		return sess
	})
	if !ok {
		return Session{}, ErrCheckoutNotStarted
	}
	return session, nil
}

// SaveAddress validates and records the shipping address. It is persisted
// only when the user asked to keep it for next time.
func (s *Service) SaveAddress(ctx context.Context, userID string, addr Address) error {
	if _, ok := s.store.Get(userID); !ok {
		return ErrCheckoutNotStarted
	}
	if err := addr.Validate(); err != nil {
		return err
	}
	if !addr.SaveAddress {
		return nil
	}
	return s.addresses.UpsertAddress(ctx, userID, addr)
}

// SavedAddress returns the address kept from a previous checkout, if any.
func (s *Service) SavedAddress(ctx context.Context, userID string) (*Address, error) {
	return s.addresses.GetAddress(ctx, userID)
}

// DisplayTotal is the amount currently shown in the wizard for the user's
// cart and step.
func (s *Service) DisplayTotal(ctx context.Context, userID string) (float64, error) {
	session, ok := s.store.Get(userID)
	if !ok {
		return 0, ErrCheckoutNotStarted
	}

	state, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load cart for total: %w", err)
	}

	return DisplayTotal(state.TotalAmount, s.shippingFee, session.Wizard.Step), nil
}

// SubmitPayment runs the payment step end to end: tokenize the card, record
// the payment, persist the order, clear the cart, and flip the wizard to
// success. Failures surface on the session's payment state and are never
// retried here.
func (s *Service) SubmitPayment(ctx context.Context, userID string, card payment.Card) (Session, error) {
	session, ok := s.store.Get(userID)
	if !ok {
		return Session{}, ErrCheckoutNotStarted
	}

	state, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return session, fmt.Errorf("failed to load cart for payment: %w", err)
	}
	if len(state.Items) == 0 || state.TotalAmount <= 0 {
		return session, ErrEmptyCart
	}

	s.store.Update(userID, func(sess Session) Session {
		sess.Payment = PaymentState{Loading: true}
		return sess
	})

	token, err := s.processor.Tokenize(ctx, card)
	if err != nil {
		return s.failPayment(userID, err), err
	}

	record := payment.Record{
		Method:      paymentMethodCard,
		Token:       token,
		TotalAmount: state.TotalAmount + s.shippingFee,
		Timestamp:   time.Now(),
	}
	if err := s.payments.AppendPayment(ctx, userID, record); err != nil {
		return s.failPayment(userID, err), err
	}

	order := &orders.Order{
		ID:          uuid.New(),
		CheckoutID:  session.Wizard.CheckoutID,
		UserID:      userID,
		TotalAmount: state.TotalAmount,
		Currency:    orderCurrency,
		Status:      orders.OrderStatusConfirmed,
		Items:       orderItems(state.Items),
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if !errors.Is(err, orders.ErrDuplicateCheckout) {
			return s.failPayment(userID, err), err
		}
		// A retried submission for the same checkout: the order already
		// exists, finish the flow instead of charging twice.
		log.Printf("order for checkout %s already exists, completing", session.Wizard.CheckoutID)
	}

	if err := s.carts.ClearCart(ctx, userID); err != nil {
		log.Printf("failed to clear cart after checkout for user %s: %v", userID, err)
	}

	session, _ = s.store.Update(userID, func(sess Session) Session {
		sess.Wizard = sess.Wizard.PaymentSucceeded()
		sess.Payment = PaymentState{Success: true}
		return sess
	})
	return session, nil
}

func (s *Service) failPayment(userID string, cause error) Session {
	session, _ := s.store.Update(userID, func(sess Session) Session {
		sess.Payment = PaymentState{Error: cause.Error()}
		return sess
	})
	return session
}

func orderItems(items []cart.Item) []orders.OrderItem {
	result := make([]orders.OrderItem, len(items))
	for i, item := range items {
		result[i] = orders.OrderItem{
			ProductID:   item.ID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}
	return result
}
