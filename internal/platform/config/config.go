package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	IdentitySecret    string
	Environment       string
	RunMigrations     bool
	RunSeed           bool
	MigrationsDir     string
	MaxBodyBytes      int64
	RoleCacheTTL      time.Duration
	HierarchyMaxDepth int
	MetricsEnabled    bool
	ExportDir         string
	RateLimit         int
	RateLimitWindow   time.Duration
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		IdentitySecret:    getEnv("IDENTITY_SECRET", ""),
		Environment:       getEnv("APP_ENV", "development"),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:           getEnvBool("RUN_SEED", true),
		MigrationsDir:     getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RoleCacheTTL:      getEnvDuration("ROLE_CACHE_TTL", 5*time.Minute),
		HierarchyMaxDepth: getEnvInt("HIERARCHY_MAX_DEPTH", 32),
		MetricsEnabled:    getEnvBool("METRICS_ENABLED", true),
		ExportDir:         getEnv("EXPORT_DIR", "storage/exports"),
		RateLimit:         getEnvInt("RATE_LIMIT", 120),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.IdentitySecret) == "" {
		return fmt.Errorf("IDENTITY_SECRET must be set in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RoleCacheTTL <= 0 {
		return fmt.Errorf("ROLE_CACHE_TTL must be positive")
	}
	if c.HierarchyMaxDepth <= 0 {
		return fmt.Errorf("HIERARCHY_MAX_DEPTH must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}
