package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	CatalogBaseURL  string
	CartBaseURL     string
	RedisAddr       string
	KafkaBrokers    []string
	KafkaTopic      string
	DefaultUserID   string
	PlatformFee     float64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	ViewIdleTTL     time.Duration
}

// Load reads configuration from the environment, after an optional .env file.
// Empty RedisAddr falls back to the in-memory session store; empty
// KafkaBrokers disables the Kafka event mirror.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:        getenv("HTTP_PORT", "8080"),
		CatalogBaseURL:  getenv("CATALOG_BASE_URL", "http://localhost:9001"),
		CartBaseURL:     getenv("CART_BASE_URL", "http://localhost:9002"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		KafkaBrokers:    splitNonEmpty(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:      getenv("KAFKA_TOPIC", "cart-events"),
		DefaultUserID:   getenv("DEFAULT_USER_ID", "1"),
		PlatformFee:     getfloat("PLATFORM_FEE", 4),
		RequestTimeout:  getduration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ViewIdleTTL:     getduration("VIEW_IDLE_TTL", 15*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
