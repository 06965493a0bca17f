package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Reject policies for transfers. Strict refuses to reject a transfer that
// was already decided; legacy rejects unconditionally.
const (
	RejectPolicyStrict = "strict"
	RejectPolicyLegacy = "legacy"
)

const defaultDevSigningKey = "dev-secret-key-change-in-production"

// Server captures process level configuration. Collaborators receive the
// relevant sub-struct at construction.
type Server struct {
	Addr        string
	Environment string
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Auth        AuthConfig
	Transfer    TransferConfig
}

// DatabaseConfig configures the PostgreSQL pool. An empty URL selects the
// in-memory stores.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the reviewer cache. An empty URL disables it.
type RedisConfig struct {
	URL              string
	PoolSize         int
	MinIdleConns     int
	DialTimeout      time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ReviewerCacheTTL time.Duration
}

// KafkaConfig configures the audit outbox relay. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers      []string
	AuditTopic   string
	PollInterval time.Duration
}

type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
}

type TransferConfig struct {
	RejectPolicy string
	ReadRetries  uint64
	TxTimeout    time.Duration
}

// IsProduction reports whether development fallbacks must be refused.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory seeds variables that are not
// already set.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	cfg := Server{
		Addr:        getEnv("MALPOT_ADDR", ":8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25, &errs),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5, &errs),
		},
		Redis: RedisConfig{
			URL:              os.Getenv("REDIS_URL"),
			PoolSize:         10,
			MinIdleConns:     2,
			DialTimeout:      5 * time.Second,
			ReadTimeout:      3 * time.Second,
			WriteTimeout:     3 * time.Second,
			ReviewerCacheTTL: getDuration("REVIEWER_CACHE_TTL", 5*time.Minute, &errs),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:   getEnv("AUDIT_TOPIC", "malpot.audit"),
			PollInterval: getDuration("OUTBOX_POLL_INTERVAL", time.Second, &errs),
		},
		Auth: AuthConfig{
			JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
			JWTIssuer:     getEnv("JWT_ISSUER", "malpot"),
		},
		Transfer: TransferConfig{
			RejectPolicy: strings.ToLower(getEnv("TRANSFER_REJECT_POLICY", RejectPolicyStrict)),
			ReadRetries:  uint64(getInt("READ_RETRIES", 3, &errs)),
			TxTimeout:    getDuration("TX_TIMEOUT", 5*time.Second, &errs),
		},
	}

	if cfg.Auth.JWTSigningKey == "" {
		if cfg.IsProduction() {
			errs = append(errs, errors.New("JWT_SIGNING_KEY is required in production"))
		}
		cfg.Auth.JWTSigningKey = defaultDevSigningKey
	}
	switch cfg.Transfer.RejectPolicy {
	case RejectPolicyStrict, RejectPolicyLegacy:
	default:
		errs = append(errs, fmt.Errorf("TRANSFER_REJECT_POLICY must be %q or %q, got %q",
			RejectPolicyStrict, RejectPolicyLegacy, cfg.Transfer.RejectPolicy))
	}
	if cfg.Transfer.TxTimeout <= 0 {
		errs = append(errs, errors.New("TX_TIMEOUT must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		*errs = append(*errs, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw))
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration, got %q", key, raw))
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
