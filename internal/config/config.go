package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the server wires at startup. Values come from
// environment variables with local-dev defaults.
type Config struct {
	HTTPPort string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	PostgresHost      string
	PostgresPort      int
	PostgresUser      string
	PostgresPassword  string
	PostgresDBName    string
	MigrationsDirPath string

	KafkaBrokers []string

	StripeAPIKey       string
	FirebaseAPIKey     string
	FirebaseCredsFile  string
	ShippingFee        float64
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
}

func Load() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "storefront"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:      getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDBName:    getEnv("POSTGRES_DB", "orders"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/orders/migrations"),

		KafkaBrokers: []string{getEnv("KAFKA_BROKER", "localhost:9092")},

		StripeAPIKey:      getEnv("STRIPE_API_KEY", ""),
		FirebaseAPIKey:    getEnv("FIREBASE_API_KEY", ""),
		FirebaseCredsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		// Flat shipping surcharge applied once the checkout moves past the
		// address step. Pricing policy is configuration, not code.
		ShippingFee: getEnvFloat("SHIPPING_FEE", 20),

		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB
	}
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
