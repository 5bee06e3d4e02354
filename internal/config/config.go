package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Environment string

	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	StorageBackend string
	SQLitePath     string
	SaveTimeout    time.Duration
	LoadTimeout    time.Duration
	BreakerTimeout time.Duration

	CartIdleTTL       time.Duration
	CartSweepInterval time.Duration

	MongoURI            string
	MongoDBName         string
	MongoMaxPoolSize    int
	MongoMinPoolSize    int
	MongoConnectTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	Currency  string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),

		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)), // 1MB

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		SQLitePath:     getEnv("SQLITE_PATH", "./haven_cart.db"),
		SaveTimeout:    getEnvDuration("SAVE_TIMEOUT", 2*time.Second),
		LoadTimeout:    getEnvDuration("LOAD_TIMEOUT", 5*time.Second),
		BreakerTimeout: getEnvDuration("BREAKER_TIMEOUT", 30*time.Second),

		CartIdleTTL:       getEnvDuration("CART_IDLE_TTL", 30*time.Minute),
		CartSweepInterval: getEnvDuration("CART_SWEEP_INTERVAL", time.Minute),

		MongoURI:            getEnv("MONGO_URI", ""),
		MongoDBName:         getEnv("MONGO_DB_NAME", "wdd430"),
		MongoMaxPoolSize:    getEnvInt("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPoolSize:    getEnvInt("MONGO_MIN_POOL_SIZE", 10),
		MongoConnectTimeout: getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 15*time.Minute),

		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "checkout-outbox"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "haven-cart-consumer"),

		Currency:  getEnv("CURRENCY", "USD"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("STORAGE_BACKEND=%s requires REDIS_ADDR", c.StorageBackend)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("STORAGE_BACKEND=%s requires MONGO_URI", c.StorageBackend)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.MongoMinPoolSize < 0 || c.MongoMaxPoolSize < 1 {
		return fmt.Errorf("invalid MongoDB pool size: min %d, max %d", c.MongoMinPoolSize, c.MongoMaxPoolSize)
	}
	if c.MongoMinPoolSize > c.MongoMaxPoolSize {
		return fmt.Errorf("MONGO_MIN_POOL_SIZE (%d) exceeds MONGO_MAX_POOL_SIZE (%d)", c.MongoMinPoolSize, c.MongoMaxPoolSize)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
