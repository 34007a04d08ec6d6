package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the process configuration read once at startup.
type Config struct {
	Server    Server
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Transfer  TransferConfig
	Offline   OfflineConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// DatabaseConfig selects the transfer store. An empty URL uses in-memory stores.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Partitions int32
	// ArchiveGroup is the consumer group of the audit archiver.
	ArchiveGroup string
	// ArchiveAddr serves the archiver's health and metrics endpoints.
	ArchiveAddr string
}

type TransferConfig struct {
	ReviewThreshold decimal.Decimal
	GPSRadiusMeters float64
	RoleCacheTTL    time.Duration
	// RoleSeed lists "actor=ROLE" pairs served when no identity provider is wired.
	RoleSeed string
}

// RateLimitConfig caps requests per actor. A zero PerWindow disables limiting.
type RateLimitConfig struct {
	PerWindow int
	Window    time.Duration
}

// OfflineConfig enables the outbox drainer when OutboxPath is set.
type OfflineConfig struct {
	OutboxPath    string
	DrainInterval time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	threshold, err := decimal.NewFromString(getEnv("ADMIN_REVIEW_THRESHOLD_AMOUNT", "10000"))
	if err != nil {
		return Config{}, fmt.Errorf("ADMIN_REVIEW_THRESHOLD_AMOUNT: %w", err)
	}
	if threshold.IsNegative() {
		return Config{}, fmt.Errorf("ADMIN_REVIEW_THRESHOLD_AMOUNT must not be negative")
	}
	radius, err := strconv.ParseFloat(getEnv("GPS_CONFIRM_RADIUS_METERS", "100"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("GPS_CONFIRM_RADIUS_METERS: %w", err)
	}
	if radius <= 0 {
		return Config{}, fmt.Errorf("GPS_CONFIRM_RADIUS_METERS must be positive")
	}
	roleTTL, err := time.ParseDuration(getEnv("ROLE_CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("ROLE_CACHE_TTL: %w", err)
	}
	drainEvery, err := time.ParseDuration(getEnv("OFFLINE_DRAIN_INTERVAL", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("OFFLINE_DRAIN_INTERVAL: %w", err)
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:          getEnv("HANDOVER_ADDR", ":8080"),
			JWTSigningKey: jwtSigningKey,
			JWTIssuer:     os.Getenv("JWT_ISSUER"),
			JWTAudience:   os.Getenv("JWT_AUDIENCE"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 20),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:   getEnv("AUDIT_TOPIC", "handover.audit"),
			Partitions:   int32(getEnvAsInt("AUDIT_TOPIC_PARTITIONS", 6)),
			ArchiveGroup: getEnv("AUDIT_ARCHIVE_GROUP", "handover-audit-archive"),
			ArchiveAddr:  getEnv("AUDIT_ARCHIVE_ADDR", ":9102"),
		},
		Transfer: TransferConfig{
			ReviewThreshold: threshold,
			GPSRadiusMeters: radius,
			RoleCacheTTL:    roleTTL,
			RoleSeed:        os.Getenv("HANDOVER_ROLES"),
		},
		Offline: OfflineConfig{
			OutboxPath:    os.Getenv("OFFLINE_OUTBOX_PATH"),
			DrainInterval: drainEvery,
		},
		RateLimit: RateLimitConfig{
			PerWindow: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			Window:    time.Minute,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
