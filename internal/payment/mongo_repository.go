package payment

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

const paymentsCollection = "payments"

type paymentDocument struct {
	UserID string `bson:"user_id"`
	Record `bson:",inline"`
}

// MongoRepository appends one document per completed payment.
type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(paymentsCollection)}
}

func (r *MongoRepository) AppendPayment(ctx context.Context, userID string, rec Record) error {
	doc := paymentDocument{UserID: userID, Record: rec}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert payment record: %w", err)
	}
	return nil
}
