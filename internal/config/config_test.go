package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"127.0.0.1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 1000, cfg.Ingest.BatchSize)
	assert.Equal(t, time.Minute, cfg.Ingest.BatchWindow())
	assert.Equal(t, 24*time.Hour, cfg.Ingest.DedupeTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("AUTH_TOKEN_TTL_MINUTES", "15")
	t.Setenv("INGEST_BATCH_WINDOW_SECONDS", "5")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL())
	assert.Equal(t, 5*time.Second, cfg.Ingest.BatchWindow())
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "rotated")
	_, err = Load()
	require.NoError(t, err)
}
