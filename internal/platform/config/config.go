package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures all process-level configuration. Values come from the
// environment (a .env file is honored when present) so main stays lean.
type Config struct {
	Addr             string
	PostgresURL      string
	RedisURL         string
	KafkaBrokers     []string
	AdminSigningKey  string
	DefaultRegion    string
	BundlesFile      string
	GeoLat           float64
	GeoLng           float64
	GeoTimeout       time.Duration
	CatalogCacheTTL  time.Duration
	ShutdownTimeout  time.Duration
	RequestTimeout   time.Duration
}

// FromEnv builds a Config from environment variables with development
// defaults. Missing backing services (postgres, redis, kafka) are not errors;
// the server degrades to in-memory seeded datasets.
func FromEnv() Config {
	// Best-effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getEnv("BASKETWISE_ADDR", ":8080"),
		PostgresURL:     os.Getenv("BASKETWISE_POSTGRES_URL"),
		RedisURL:        os.Getenv("BASKETWISE_REDIS_URL"),
		AdminSigningKey: getEnv("BASKETWISE_ADMIN_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DefaultRegion:   getEnv("BASKETWISE_DEFAULT_REGION", "tricity"),
		BundlesFile:     os.Getenv("BASKETWISE_BUNDLES_FILE"),
		GeoLat:          getFloat("BASKETWISE_GEO_LAT", 30.7333),
		GeoLng:          getFloat("BASKETWISE_GEO_LNG", 76.7794),
		GeoTimeout:      getDuration("BASKETWISE_GEO_TIMEOUT", 5*time.Second),
		CatalogCacheTTL: getDuration("BASKETWISE_CATALOG_CACHE_TTL", 5*time.Minute),
		ShutdownTimeout: getDuration("BASKETWISE_SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:  getDuration("BASKETWISE_REQUEST_TIMEOUT", 30*time.Second),
	}

	if brokers := os.Getenv("BASKETWISE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Accept bare seconds for operator convenience.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
