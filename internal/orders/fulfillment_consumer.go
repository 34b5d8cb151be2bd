package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// OrderConfirmedEvent is the outbox payload published when an order is
// created.
type OrderConfirmedEvent struct {
	OrderID     string  `json:"order_id"`
	CheckoutID  string  `json:"checkout_id"`
	UserID      string  `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
}

// FulfillmentConsumer picks up confirmed orders and moves them into
// processing, standing in for the warehouse side of the pipeline.
type FulfillmentConsumer struct {
	repo   OrderRepository
	reader *kafka.Reader
}

func NewFulfillmentConsumer(repo OrderRepository, brokers ...string) *FulfillmentConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    orderEventsTopic,
		GroupID:  "fulfillment",
		MaxBytes: 10e6, // 10MB
	})
	return &FulfillmentConsumer{repo, reader}
}

func (c *FulfillmentConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *FulfillmentConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *FulfillmentConsumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	var event OrderConfirmedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Printf("error parsing message: %v", err)
		return
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		log.Printf("invalid order_id %q: %v", event.OrderID, err)
		return
	}

	err = c.repo.UpdateOrderStatus(ctx, orderID, OrderStatusConfirmed, OrderStatusProcessing)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			// Already advanced or unknown: a replayed event, skip it.
			return
		}
		log.Printf("failed to advance order %s: %v", event.OrderID, err)
		return
	}

	log.Printf("order %s moved to processing", event.OrderID)
}
