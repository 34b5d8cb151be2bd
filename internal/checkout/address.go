package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrAddressNotFound = errors.New("checkout address not found")

// Address is the shipping address captured on the first wizard step. At most
// one is stored per user; SaveAddress controls whether it is persisted for
// the next checkout.
type Address struct {
	FirstName   string `json:"firstName" bson:"first_name"`
	LastName    string `json:"lastName" bson:"last_name"`
	Address1    string `json:"address1" bson:"address1"`
	Address2    string `json:"address2" bson:"address2"`
	City        string `json:"city" bson:"city"`
	State       string `json:"state" bson:"state"`
	PostalCode  string `json:"postalCode" bson:"postal_code"`
	Country     string `json:"country" bson:"country"`
	SaveAddress bool   `json:"saveAddress" bson:"save_address"`
}

// Validate rejects an address whose required fields are empty, before any
// collaborator is reached.
func (a Address) Validate() error {
	required := map[string]string{
		"firstName":  a.FirstName,
		"lastName":   a.LastName,
		"address1":   a.Address1,
		"city":       a.City,
		"postalCode": a.PostalCode,
		"country":    a.Country,
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("missing required address field %q", field)
		}
	}
	return nil
}

type AddressRepository interface {
	UpsertAddress(ctx context.Context, userID string, addr Address) error
	GetAddress(ctx context.Context, userID string) (*Address, error)
}

const addressesCollection = "checkoutAddresses"

type addressDocument struct {
	UserID    string    `bson:"user_id"`
	Address   `bson:",inline"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoAddressRepository stores one address document per user.
type MongoAddressRepository struct {
	collection *mongo.Collection
}

func NewMongoAddressRepository(db *mongo.Database) *MongoAddressRepository {
	return &MongoAddressRepository{collection: db.Collection(addressesCollection)}
}

func (r *MongoAddressRepository) UpsertAddress(ctx context.Context, userID string, addr Address) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{"$set": addressDocument{
		UserID:    userID,
		Address:   addr,
		UpdatedAt: time.Now(),
	}}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert checkout address: %w", err)
	}
	return nil
}

func (r *MongoAddressRepository) GetAddress(ctx context.Context, userID string) (*Address, error) {
	var doc addressDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout address: %w", err)
	}
	return &doc.Address, nil
}

// CreateIndexes enforces the one-address-per-user shape.
func (r *MongoAddressRepository) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create checkout address index: %w", err)
	}
	return nil
}
