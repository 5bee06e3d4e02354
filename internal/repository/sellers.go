package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrSellerNotFound = errors.New("seller not found")

type sellerDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	UserID       interface{}        `bson:"userId"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	BusinessName string             `bson:"businessName,omitempty"`
	Description  string             `bson:"description,omitempty"`
	Location     string             `bson:"location,omitempty"`
	Phone        string             `bson:"phone,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d sellerDocument) toDomain() *domain.Seller {
	return &domain.Seller{
		ID:           d.ID.Hex(),
		UserID:       idString(d.UserID),
		Name:         d.Name,
		Email:        d.Email,
		BusinessName: d.BusinessName,
		Description:  d.Description,
		Location:     d.Location,
		Phone:        d.Phone,
		CreatedAt:    d.CreatedAt,
	}
}

// idString renders a reference stored either as an ObjectID or a plain string.
func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	}
	return ""
}

// Sellers is a read-only view of the seller profiles.
type Sellers struct {
	collection *mongo.Collection
}

func NewSellers(db *mongo.Database) *Sellers {
	return &Sellers{
		collection: db.Collection("sellers"),
	}
}

// List returns every seller, newest first.
func (s *Sellers) List(ctx context.Context) ([]*domain.Seller, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sellers: %w", err)
	}
	defer cursor.Close(ctx)

	sellers := []*domain.Seller{}
	for cursor.Next(ctx) {
		var doc sellerDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode seller: %w", err)
		}
		sellers = append(sellers, doc.toDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return sellers, nil
}

func (s *Sellers) GetSeller(ctx context.Context, id string) (*domain.Seller, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: seller %q", ErrInvalidID, id)
	}

	var doc sellerDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}

	return doc.toDomain(), nil
}
