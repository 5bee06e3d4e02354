package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	c "github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/cache"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/cart"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/checkout"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/config"
	h "github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/http"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/logger"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/poller"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/repository"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/storage"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	ctx := context.Background()
	var closers []func()

	// MongoDB backs the catalog and, with STORAGE_BACKEND=mongo, the carts.
	var mongoDB *mongo.Database
	if cfg.MongoURI != "" {
		mongoDB, err = repository.ConnectMongoDB(ctx, repository.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDBName,
			MaxPoolSize:    uint64(cfg.MongoMaxPoolSize),
			MinPoolSize:    uint64(cfg.MongoMinPoolSize),
			ConnectTimeout: cfg.MongoConnectTimeout,
		})
		if err != nil {
			l.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		closers = append(closers, func() {
			if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
				l.Warn("MongoDB disconnect failed", zap.Error(err))
			}
		})
		l.Info("Connected to MongoDB", zap.String("database", cfg.MongoDBName))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			l.Fatal("Redis connection failed", zap.Error(err))
		}
		closers = append(closers, func() { redisClient.Close() })
		l.Info("Redis ping succeeded", zap.String("addr", cfg.RedisAddr))
	}

	slot, closeSlot, err := buildSlot(ctx, cfg, mongoDB, redisClient, l)
	if err != nil {
		l.Fatal("Failed to set up cart storage", zap.Error(err))
	}
	if closeSlot != nil {
		closers = append(closers, closeSlot)
	}

	registry := cart.NewRegistry(func(profileID string) cart.Persister {
		return storage.NewAdapter(slot, storage.CartKey(profileID))
	}, l, cart.WithSaveTimeout(cfg.SaveTimeout), cart.WithLoadTimeout(cfg.LoadTimeout))
	registry.StartEviction(cfg.CartIdleTTL, cfg.CartSweepInterval)

	var (
		catalog h.Catalog
		sellers h.SellerDirectory
		reviews h.ReviewSource
	)
	if mongoDB != nil {
		catalog = repository.NewProducts(mongoDB)
		sellers = repository.NewSellers(mongoDB)
		reviews = repository.NewReviews(mongoDB)
	} else {
		l.Warn("MONGO_URI not set, product catalog disabled")
	}

	var productLookup h.ProductLookup
	if catalog != nil {
		productLookup = catalog
	}

	router := h.NewRouter(
		h.RouterConfig{
			RequestTimeout:     cfg.RequestTimeout,
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		h.NewCartHandler(registry, productLookup, cfg.RequestTimeout, l),
		h.NewCheckoutHandler(registry, checkout.NewService(cfg.Currency, l), cfg.RequestTimeout, l),
		h.NewProductHandler(catalog, reviews, cfg.RequestTimeout, l),
		h.NewSellerHandler(sellers, catalog, cfg.RequestTimeout, l),
		l,
	)

	pollCtx, stopPoller := context.WithCancel(ctx)
	var pollers sync.WaitGroup
	if len(cfg.KafkaBrokers) > 0 {
		p := poller.NewPoller(registry, l, cfg.KafkaTopic, cfg.KafkaGroupID, cfg.KafkaBrokers...)
		pollers.Add(1)
		go func() {
			defer pollers.Done()
			defer p.Close()
			p.Run(pollCtx)
		}()
		l.Info("Kafka poller started", zap.String("topic", cfg.KafkaTopic), zap.Strings("brokers", cfg.KafkaBrokers))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "haven-cart"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info("Cart service starting", zap.String("port", cfg.HTTPPort), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")
	stopPoller()
	pollers.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
	}

	registry.Close()
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	l.Info("server exited")
}

// buildSlot selects the cart storage backend. Remote backends sit behind a
// circuit breaker, and a configured Redis fronts sqlite or mongo as a cache.
func buildSlot(ctx context.Context, cfg *config.Config, mongoDB *mongo.Database, redisClient *redis.Client, l *zap.Logger) (storage.Slot, func(), error) {
	breaker := func(name string, s storage.Slot) storage.Slot {
		return storage.NewBreakerSlot(s, storage.BreakerSettings{Name: name, Timeout: cfg.BreakerTimeout}, l)
	}

	var (
		primary storage.Slot
		closeFn func()
	)

	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemorySlot(), nil, nil

	case config.BackendRedis:
		return breaker("redis", c.NewRedisCache(redisClient, 0)), nil, nil

	case config.BackendMongo:
		if mongoDB == nil {
			return nil, nil, errors.New("mongo backend requires MONGO_URI")
		}
		slots := repository.NewCartSlots(mongoDB)
		if err := slots.CreateIndexes(ctx); err != nil {
			return nil, nil, err
		}
		primary = breaker("mongo", slots)

	default:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, nil, err
		}
		primary = s
		closeFn = func() {
			if err := s.Close(); err != nil {
				l.Warn("SQLite close failed", zap.Error(err))
			}
		}
	}

	if redisClient != nil {
		l.Info("Redis cache enabled", zap.Duration("ttl", cfg.CacheTTL))
		cache := breaker("redis-cache", c.NewRedisCache(redisClient, cfg.CacheTTL))
		return storage.NewTieredSlot(primary, cache, l), closeFn, nil
	}
	return primary, closeFn, nil
}
