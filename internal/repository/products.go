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
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidID       = errors.New("invalid id")
)

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	SellerID    interface{}        `bson:"sellerId"` // ObjectID, or string in older documents
	ArtistName  string             `bson:"artistName"`
	Category    string             `bson:"category,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		SellerID:    idString(d.SellerID),
		ArtistName:  d.ArtistName,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Products is a read-only view of the marketplace catalog.
type Products struct {
	collection *mongo.Collection
}

func NewProducts(db *mongo.Database) *Products {
	return &Products{
		collection: db.Collection("products"),
	}
}

// List returns all products, or only those of sellerID when it is not empty.
func (p *Products) List(ctx context.Context, sellerID string) ([]*domain.Product, error) {
	filter := bson.M{}
	if sellerID != "" {
		oid, err := primitive.ObjectIDFromHex(sellerID)
		if err != nil {
			return nil, fmt.Errorf("%w: seller %q", ErrInvalidID, sellerID)
		}
		filter["sellerId"] = bson.M{"$in": bson.A{oid, sellerID}}
	}

	cursor, err := p.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*domain.Product{}
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, doc.toDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return products, nil
}

func (p *Products) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: product %q", ErrInvalidID, id)
	}

	var doc productDocument
	err = p.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return doc.toDomain(), nil
}
