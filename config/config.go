package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port            string
	StoreDriver     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	DatabaseURL     string
	LogLevel        string
	RequestTimeout  time.Duration
	CORSOrigin      string
}

// LoadEnvFile loads a .env file into the process environment. It reports
// whether a file was found; a missing file is not an error.
func LoadEnvFile(filenames ...string) bool {
	return godotenv.Load(filenames...) == nil
}

// Load reads the configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "blog"),
		MongoCollection: getEnv("MONGO_COLLECTION", "posts"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: must be positive, got %s", timeout)
	}
	cfg.RequestTimeout = timeout

	switch cfg.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
