package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"MALPOT_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "JWT_SIGNING_KEY",
		"TRANSFER_REJECT_POLICY", "READ_RETRIES", "TX_TIMEOUT", "ENVIRONMENT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, RejectPolicyStrict, cfg.Transfer.RejectPolicy)
	assert.Equal(t, uint64(3), cfg.Transfer.ReadRetries)
	assert.Equal(t, 5*time.Second, cfg.Transfer.TxTimeout)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, defaultDevSigningKey, cfg.Auth.JWTSigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MALPOT_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TRANSFER_REJECT_POLICY", "LEGACY")
	t.Setenv("READ_RETRIES", "5")
	t.Setenv("TX_TIMEOUT", "2s")
	t.Setenv("REVIEWER_CACHE_TTL", "1m")

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, RejectPolicyLegacy, cfg.Transfer.RejectPolicy)
	assert.Equal(t, uint64(5), cfg.Transfer.ReadRetries)
	assert.Equal(t, 2*time.Second, cfg.Transfer.TxTimeout)
	assert.Equal(t, time.Minute, cfg.Redis.ReviewerCacheTTL)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRANSFER_REJECT_POLICY", "lenient")
	t.Setenv("READ_RETRIES", "many")
	t.Setenv("TX_TIMEOUT", "soon")

	_, err := FromEnv()

	require.Error(t, err)
	assert.ErrorContains(t, err, "TRANSFER_REJECT_POLICY")
	assert.ErrorContains(t, err, "READ_RETRIES")
	assert.ErrorContains(t, err, "TX_TIMEOUT")
}

func TestFromEnvRequiresSigningKeyInProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SIGNING_KEY", "")

	_, err := FromEnv()

	assert.ErrorContains(t, err, "JWT_SIGNING_KEY")
}
