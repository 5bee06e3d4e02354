package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupTestDB(t *testing.T) *mongo.Database {
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, MongoConfig{URI: uri, Database: "testdb", MaxPoolSize: 10, MinPoolSize: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(ctx) })

	return db
}

func TestCartSlots(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slots := NewCartSlots(db)
	require.NoError(t, slots.CreateIndexes(ctx))
	key := storage.CartKey("buyer-1")

	t.Run("missing key", func(t *testing.T) {
		_, err := slots.Get(ctx, "haven_cart:nobody")
		assert.ErrorIs(t, err, storage.ErrSlotNotFound)
	})

	t.Run("upsert keeps one document", func(t *testing.T) {
		require.NoError(t, slots.Put(ctx, key, []byte("v1")))
		require.NoError(t, slots.Put(ctx, key, []byte("v2")))

		got, err := slots.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "v2", string(got))

		n, err := db.Collection("carts").CountDocuments(ctx, bson.M{"key": key})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, slots.Delete(ctx, key))
		_, err := slots.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrSlotNotFound)
		assert.NoError(t, slots.Delete(ctx, key))
	})
}

func TestProducts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	sellerA := primitive.NewObjectID()
	sellerB := primitive.NewObjectID()
	vaseID := primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := db.Collection("products").InsertMany(ctx, []interface{}{
		bson.M{"_id": vaseID, "title": "Clay Vase", "description": "Hand thrown", "price": 89.99,
			"sellerId": sellerA, "artistName": "Ada", "category": "pottery", "imageUrl": "/vase.jpg",
			"createdAt": now, "updatedAt": now},
		bson.M{"_id": primitive.NewObjectID(), "title": "Scarf", "price": 25.0,
			"sellerId": sellerA.Hex(), "artistName": "Ada", "createdAt": now, "updatedAt": now},
		bson.M{"_id": primitive.NewObjectID(), "title": "Basket", "price": 40.0,
			"sellerId": sellerB, "artistName": "Ben", "createdAt": now, "updatedAt": now},
	})
	require.NoError(t, err)

	products := NewProducts(db)

	t.Run("list all", func(t *testing.T) {
		res, err := products.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("list by seller matches id and string", func(t *testing.T) {
		res, err := products.List(ctx, sellerA.Hex())
		require.NoError(t, err)
		require.Len(t, res, 2)
		for _, p := range res {
			assert.Equal(t, sellerA.Hex(), p.SellerID)
		}
	})

	t.Run("list invalid seller", func(t *testing.T) {
		_, err := products.List(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("get", func(t *testing.T) {
		p, err := products.GetProduct(ctx, vaseID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Clay Vase", p.Title)
		assert.Equal(t, 89.99, p.Price)
		assert.Equal(t, "/vase.jpg", p.ImageURL)
		assert.Equal(t, now, p.CreatedAt.UTC())
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := products.GetProduct(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("get invalid id", func(t *testing.T) {
		_, err := products.GetProduct(ctx, "xyz")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestSellers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	adaID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	older := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	newer := older.Add(30 * time.Minute)

	_, err := db.Collection("sellers").InsertMany(ctx, []interface{}{
		bson.M{"_id": adaID, "userId": userID, "name": "Ada", "email": "ada@example.com",
			"businessName": "Ada Pottery", "location": "Lagos", "createdAt": older},
		bson.M{"_id": primitive.NewObjectID(), "userId": "legacy-user", "name": "Ben",
			"email": "ben@example.com", "createdAt": newer},
	})
	require.NoError(t, err)

	sellers := NewSellers(db)

	t.Run("list newest first", func(t *testing.T) {
		res, err := sellers.List(ctx)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "Ben", res[0].Name)
		assert.Equal(t, "legacy-user", res[0].UserID)
		assert.Equal(t, "Ada", res[1].Name)
	})

	t.Run("get", func(t *testing.T) {
		s, err := sellers.GetSeller(ctx, adaID.Hex())
		require.NoError(t, err)
		assert.Equal(t, adaID.Hex(), s.ID)
		assert.Equal(t, userID.Hex(), s.UserID)
		assert.Equal(t, "Ada Pottery", s.BusinessName)
		assert.Equal(t, older, s.CreatedAt.UTC())
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := sellers.GetSeller(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrSellerNotFound)
	})

	t.Run("get invalid id", func(t *testing.T) {
		_, err := sellers.GetSeller(ctx, "ada")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestReviews(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	vaseID := primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := db.Collection("reviews").InsertMany(ctx, []interface{}{
		bson.M{"_id": primitive.NewObjectID(), "productId": vaseID, "userId": primitive.NewObjectID(),
			"rating": 4, "comment": "Lovely glaze", "dateCreated": now.Add(-time.Hour), "dateUpdated": now.Add(-time.Hour)},
		bson.M{"_id": primitive.NewObjectID(), "productId": vaseID.Hex(), "userId": "u-2",
			"rating": 5, "comment": "Arrived safely", "dateCreated": now, "dateUpdated": now},
		bson.M{"_id": primitive.NewObjectID(), "productId": primitive.NewObjectID(), "userId": "u-3",
			"rating": 1, "comment": "Other product", "dateCreated": now, "dateUpdated": now},
	})
	require.NoError(t, err)

	reviews := NewReviews(db)

	t.Run("list by product", func(t *testing.T) {
		res, err := reviews.ListByProduct(ctx, vaseID.Hex())
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, 5, res[0].Rating)
		assert.Equal(t, "u-2", res[0].UserID)
		assert.Equal(t, vaseID.Hex(), res[1].ProductID)
	})

	t.Run("no reviews", func(t *testing.T) {
		res, err := reviews.ListByProduct(ctx, primitive.NewObjectID().Hex())
		require.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res)
	})

	t.Run("invalid product id", func(t *testing.T) {
		_, err := reviews.ListByProduct(ctx, "vase")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}
