package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/cart"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/orders"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/payment"
)

type mockCartService struct {
	state      *cart.State
	getErr     error
	clearedFor []string
}

func (m *mockCartService) GetCart(context.Context, string) (*cart.State, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.state, nil
}

func (m *mockCartService) ClearCart(_ context.Context, userID string) error {
	m.clearedFor = append(m.clearedFor, userID)
	return nil
}

type mockAddressRepo struct {
	saved map[string]Address
}

func (m *mockAddressRepo) UpsertAddress(_ context.Context, userID string, addr Address) error {
	if m.saved == nil {
		m.saved = make(map[string]Address)
	}
	m.saved[userID] = addr
	return nil
}

func (m *mockAddressRepo) GetAddress(_ context.Context, userID string) (*Address, error) {
	addr, ok := m.saved[userID]
	if !ok {
		return nil, ErrAddressNotFound
	}
	return &addr, nil
}

type mockProcessor struct {
	token string
	err   error
	calls int
}

func (m *mockProcessor) Tokenize(context.Context, payment.Card) (string, error) {
	m.calls++
	return m.token, m.err
}

type mockPaymentRepo struct {
	records []payment.Record
	err     error
}

func (m *mockPaymentRepo) AppendPayment(_ context.Context, _ string, rec payment.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

type mockOrderRepo struct {
	created []*orders.Order
	err     error
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *orders.Order) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, order)
	return nil
}

func (m *mockOrderRepo) GetOrderByID(context.Context, uuid.UUID) (*orders.Order, error) {
	return nil, orders.ErrOrderNotFound
}

func (m *mockOrderRepo) ListOrdersByUserID(context.Context, string) ([]*orders.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateOrderStatus(context.Context, uuid.UUID, orders.OrderStatus, orders.OrderStatus) error {
	return nil
}

func (m *mockOrderRepo) GetUnprocessedEvents(context.Context, int) ([]*orders.OutboxEvent, error) {
	return nil, nil
}

func (m *mockOrderRepo) MarkEventAsProcessed(context.Context, int64) error { return nil }
func (m *mockOrderRepo) RunMigrations(*orders.Credentials) error           { return nil }
func (m *mockOrderRepo) Close() error                                      { return nil }

type fixture struct {
	svc       *Service
	carts     *mockCartService
	addresses *mockAddressRepo
	processor *mockProcessor
	payments  *mockPaymentRepo
	orders    *mockOrderRepo
}

func newFixture(state *cart.State) *fixture {
	f := &fixture{
		carts:     &mockCartService{state: state},
		addresses: &mockAddressRepo{},
		processor: &mockProcessor{token: "tok_visa"},
		payments:  &mockPaymentRepo{},
		orders:    &mockOrderRepo{},
	}
	f.svc = NewService(NewMemoryStore(), f.addresses, f.carts, f.processor, f.payments, f.orders, 20)
	return f
}

func filledCart() *cart.State {
	return &cart.State{
		Items: []cart.Item{
			{ID: "p1", Name: "Mug", Price: 30, Quantity: 2},
			{ID: "p2", Name: "Mat", Price: 40, Quantity: 1},
		},
		TotalAmount: 100,
	}
}

func validAddress() Address {
	return Address{
		FirstName:  "Mariam",
		LastName:   "Shebl",
		Address1:   "1 Main St",
		City:       "Cairo",
		PostalCode: "11511",
		Country:    "EG",
	}
}

func TestBegin_EmptyCartRefused(t *testing.T) {
	f := newFixture(&cart.State{Items: []cart.Item{}})

	_, err := f.svc.Begin(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestBegin_EmptyCartAllowedAfterSuccess(t *testing.T) {
	f := newFixture(filledCart())
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)

	_, err = f.svc.SubmitPayment(ctx, "u1", payment.Card{})
	require.NoError(t, err)

	// Cart is now empty, but the user is on the success screen.
	f.carts.state = &cart.State{Items: []cart.Item{}}
	session, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, session.Payment.Success)
	assert.Equal(t, StepSuccess, session.Wizard.Step)
}

func TestBegin_ResetsPaymentState(t *testing.T) {
	f := newFixture(filledCart())
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)
	_, err = f.svc.SubmitPayment(ctx, "u1", payment.Card{})
	require.NoError(t, err)

	session, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, session.Payment.Success)
	assert.Equal(t, StepAddress, session.Wizard.Step)
}

func TestNextBack_RequireStartedCheckout(t *testing.T) {
	f := newFixture(filledCart())

	_, err := f.svc.Next("u1")
	assert.ErrorIs(t, err, ErrCheckoutNotStarted)
	_, err = f.svc.Back("u1")
	assert.ErrorIs(t, err, ErrCheckoutNotStarted)
}

func TestSaveAddress_PersistsOnlyWhenRequested(t *testing.T) {
	f := newFixture(filledCart())
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)

	addr := validAddress()
	require.NoError(t, f.svc.SaveAddress(ctx, "u1", addr))
	assert.Empty(t, f.addresses.saved)

	addr.SaveAddress = true
	require.NoError(t, f.svc.SaveAddress(ctx, "u1", addr))

	saved, err := f.svc.SavedAddress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Mariam", saved.FirstName)
}

func TestSaveAddress_ValidatesRequiredFields(t *testing.T) {
	f := newFixture(filledCart())
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)

	addr := validAddress()
	addr.City = ""
	err = f.svc.SaveAddress(ctx, "u1", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "city")
}

func TestDisplayTotal_AddsShippingPastAddressStep(t *testing.T) {
	f := newFixture(filledCart())
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)

	total, err := f.svc.DisplayTotal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)

	_, err = f.svc.Next("u1")
	require.NoError(t, err)

	total, err = f.svc.DisplayTotal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, total)
}

func TestSubmitPayment_HappyPath(t *testing.T) {
	f := newFixture(filledCart())
	ctx := context.Background()

	begun, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)

	session, err := f.svc.SubmitPayment(ctx, "u1", payment.Card{Number: "4242424242424242"})
	require.NoError(t, err)

	assert.Equal(t, StepSuccess, session.Wizard.Step)
	assert.True(t, session.Payment.Success)
	assert.Empty(t, session.Payment.Error)

	// Payment record carries the shipping surcharge, the order does not.
	require.Len(t, f.payments.records, 1)
	assert.Equal(t, 120.0, f.payments.records[0].TotalAmount)
	assert.Equal(t, "tok_visa", f.payments.records[0].Token)

	require.Len(t, f.orders.created, 1)
	order := f.orders.created[0]
	assert.Equal(t, 100.0, order.TotalAmount)
	assert.Equal(t, begun.Wizard.CheckoutID, order.CheckoutID)
	assert.Equal(t, orders.OrderStatusConfirmed, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "p1", order.Items[0].ProductID)

	assert.Equal(t, []string{"u1"}, f.carts.clearedFor)
}

func TestSubmitPayment_TokenizeFailureSurfacesInline(t *testing.T) {
	f := newFixture(filledCart())
	f.processor.err = fmt.Errorf("%w: insufficient funds", payment.ErrPaymentDeclined)
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)

	session, err := f.svc.SubmitPayment(ctx, "u1", payment.Card{})
	require.ErrorIs(t, err, payment.ErrPaymentDeclined)

	assert.False(t, session.Payment.Success)
	assert.Contains(t, session.Payment.Error, "insufficient funds")
	assert.NotEqual(t, StepSuccess, session.Wizard.Step)

	// Nothing downstream happened.
	assert.Empty(t, f.payments.records)
	assert.Empty(t, f.orders.created)
	assert.Empty(t, f.carts.clearedFor)
}

func TestSubmitPayment_DuplicateCheckoutCompletes(t *testing.T) {
	f := newFixture(filledCart())
	f.orders.err = orders.ErrDuplicateCheckout
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)

	session, err := f.svc.SubmitPayment(ctx, "u1", payment.Card{})
	require.NoError(t, err)
	assert.True(t, session.Payment.Success)
	assert.Equal(t, []string{"u1"}, f.carts.clearedFor)
}

func TestSubmitPayment_EmptyCartRejected(t *testing.T) {
	f := newFixture(filledCart())
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "u1")
	require.NoError(t, err)

	f.carts.state = &cart.State{Items: []cart.Item{}}
	_, err = f.svc.SubmitPayment(ctx, "u1", payment.Card{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.processor.calls)
}
