package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config gathers every tunable of the service; components receive it (or
// single fields) at construction instead of reading the environment.
type Config struct {
	DatabaseURL    string
	RedisURL       string
	ListenAddr     string
	JWTSecret      string
	LogLevel       string
	LockTimeout    time.Duration
	CacheTTL       time.Duration
	MigrationsDir  string
	DBMaxOpenConns int
	DBMaxIdleConns int
}

func Load() (*Config, error) {
	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ListenAddr:     getEnv("APP_HOST", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
		LockTimeout:    getDuration("LOCK_TIMEOUT", 3*time.Second),
		CacheTTL:       getDuration("AVAILABILITY_CACHE_TTL", 30*time.Second),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
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

func getDuration(key string, fallback time.Duration) time.Duration {
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
