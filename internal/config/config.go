// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// HTTPAddr serves /metrics, /healthz and /readyz.
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty selects the in-memory store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "taskhub-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "taskhub-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4 to 31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// PolicyEngine selects the permission evaluator: "static" or "rego".
	PolicyEngine string `mapstructure:"POLICY_ENGINE"`
	// RedisURL enables the membership role cache when set (e.g. redis://localhost:6379/0).
	RedisURL string `mapstructure:"REDIS_URL"`
	// RoleCacheTTL is how long a resolved role stays cached (e.g. "5m").
	RoleCacheTTL string `mapstructure:"ROLE_CACHE_TTL"`
	// KafkaBrokers is a comma-separated list of Kafka broker addresses. Empty disables the Kafka event producer.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the topic domain events are written to.
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`
	// OTLPEndpoint is the OTLP gRPC collector (host:port or URL). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// LogLevel is a zap level name.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("HTTP_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "taskhub-auth")
	v.SetDefault("JWT_AUDIENCE", "taskhub-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("POLICY_ENGINE", "static")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("ROLE_CACHE_TTL", "5m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "taskhub-events")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}
	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	cfg.PolicyEngine = strings.ToLower(strings.TrimSpace(cfg.PolicyEngine))
	switch cfg.PolicyEngine {
	case "", "static":
		cfg.PolicyEngine = "static"
	case "rego":
	default:
		return nil, errors.New("config: POLICY_ENGINE must be static or rego")
	}

	if (cfg.JWTPrivateKey == "") != (cfg.JWTPublicKey == "") {
		return nil, errors.New("config: JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set together")
	}
	if cfg.JWTPrivateKey == "" && cfg.Env == "production" {
		return nil, errors.New("config: JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required when APP_ENV=production")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 15*time.Minute)
}

// RoleCacheTTLDuration parses RoleCacheTTL. Returns 5m if unset or invalid.
func (c *Config) RoleCacheTTLDuration() time.Duration {
	return parseDuration(c.RoleCacheTTL, 5*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list disables the Kafka event producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
