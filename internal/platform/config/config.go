package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	pstrings "renterverify/pkg/platform/strings"
)

// Config is the full service configuration, read from the environment so
// main stays lean.
type Config struct {
	Server   Server
	Registry RegistryConfig
	Logging  LoggingConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	// OpsToken enables /ops endpoints when set.
	OpsToken string
}

// RegistryConfig configures the registry itself.
type RegistryConfig struct {
	// Admin is the administrator installed when the ledger is empty.
	Admin         string
	Genesis       time.Time
	BlockInterval time.Duration
	CacheTTL      time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// PostgresConfig enables the persistent ledger when URL is set.
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig enables the record cache when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables audit streaming when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	ClientID   string
	AuditTopic string
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	var err error
	cfg := Config{
		Server: Server{
			Addr:          envOr("REGISTRY_ADDR", ":8080"),
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envOr("JWT_ISSUER", "renterverify"),
			OpsToken:      os.Getenv("OPS_TOKEN"),
		},
		Registry: RegistryConfig{
			Admin: os.Getenv("REGISTRY_ADMIN"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:    pstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			ClientID:   envOr("KAFKA_CLIENT_ID", "renterverify"),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "registry.audit"),
		},
	}

	if cfg.Registry.Admin == "" {
		return Config{}, fmt.Errorf("REGISTRY_ADMIN is required")
	}
	if cfg.Registry.BlockInterval, err = durationEnv("BLOCK_INTERVAL", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Registry.CacheTTL, err = durationEnv("CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	cfg.Registry.Genesis = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if raw := os.Getenv("GENESIS_TIME"); raw != "" {
		if cfg.Registry.Genesis, err = time.Parse(time.RFC3339, raw); err != nil {
			return Config{}, fmt.Errorf("GENESIS_TIME: %w", err)
		}
	}

	if cfg.Postgres.MaxOpenConns, err = intEnv("DATABASE_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.Postgres.MaxIdleConns, err = intEnv("DATABASE_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, err
	}
	if cfg.Redis.PoolSize, err = intEnv("REDIS_POOL_SIZE", 10); err != nil {
		return Config{}, err
	}
	if cfg.Redis.MinIdleConns, err = intEnv("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Config{}, err
	}
	cfg.Redis.DialTimeout = 5 * time.Second
	cfg.Redis.ReadTimeout = 3 * time.Second
	cfg.Redis.WriteTimeout = 3 * time.Second

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
