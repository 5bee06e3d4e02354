package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProductID interface{}        `bson:"productId"`
	UserID    interface{}        `bson:"userId"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"dateCreated"`
	UpdatedAt time.Time          `bson:"dateUpdated"`
}

func (d reviewDocument) toDomain() *domain.Review {
	return &domain.Review{
		ID:        d.ID.Hex(),
		ProductID: idString(d.ProductID),
		UserID:    idString(d.UserID),
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Reviews reads product reviews. Writing reviews is not supported.
type Reviews struct {
	collection *mongo.Collection
}

func NewReviews(db *mongo.Database) *Reviews {
	return &Reviews{
		collection: db.Collection("reviews"),
	}
}

// ListByProduct returns the reviews of productID, newest first.
func (r *Reviews) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: product %q", ErrInvalidID, productID)
	}

	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"productId": bson.M{"$in": bson.A{oid, productID}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	reviews := make([]*domain.Review, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.toDomain()
	}
	return reviews, nil
}
