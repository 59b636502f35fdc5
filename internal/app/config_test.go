package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, ":8000", cfg.HTTPAddr)
	require.Equal(t, ":50051", cfg.GRPCAddr)
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	require.Equal(t, 65, cfg.PostgresMaxConns)
	require.Equal(t, 20*time.Second, cfg.PostgresAcquireTimeout)
	require.True(t, cfg.PostgresAutoMigrate)
	require.True(t, cfg.SeedDemoData)
	require.Positive(t, cfg.OutboxPollInterval)
	require.Positive(t, cfg.OutboxBatchSize)
	require.Positive(t, cfg.OutboxMaxAttempts)
	require.GreaterOrEqual(t, cfg.OutboxRetryDelay, time.Duration(0))
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Positive(t, cfg.IdempotencyCleanupInterval)
	require.Positive(t, cfg.IdempotencyCleanupBatchSize)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestConfig_OutboxEnabledFollowsBrokers(t *testing.T) {
	cfg := DefaultConfig()
	require.False(t, cfg.outboxEnabled())

	cfg.KafkaBrokers = []string{"localhost:9092"}
	require.True(t, cfg.outboxEnabled())
}
