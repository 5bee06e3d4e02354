package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type slotDocument struct {
	Key       string    `bson:"key"`
	Payload   []byte    `bson:"payload"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// CartSlots stores serialized carts in the carts collection, one document per
// slot key. Documents never expire.
type CartSlots struct {
	collection *mongo.Collection
}

func NewCartSlots(db *mongo.Database) *CartSlots {
	return &CartSlots{
		collection: db.Collection("carts"),
	}
}

func (c *CartSlots) Get(ctx context.Context, key string) ([]byte, error) {
	var doc slotDocument

	err := c.collection.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return doc.Payload, nil
}

func (c *CartSlots) Put(ctx context.Context, key string, value []byte) error {
	now := time.Now()

	filter := bson.M{"key": key}
	update := bson.M{
		"$set":         bson.M{"payload": value, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := c.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (c *CartSlots) Delete(ctx context.Context, key string) error {
	if _, err := c.collection.DeleteOne(ctx, bson.M{"key": key}); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}

func (c *CartSlots) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := c.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
