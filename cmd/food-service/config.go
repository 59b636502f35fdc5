package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/foodorder/internal/app"
)

const (
	envHTTPAddr                    = "FOOD_HTTP_ADDR"
	envGRPCAddr                    = "FOOD_GRPC_ADDR"
	envMetricsAddr                 = "FOOD_METRICS_ADDR"
	envStorageDriver               = "FOOD_STORAGE_DRIVER"
	envDatabaseURL                 = "DATABASE_URL"
	envDBMaxConns                  = "FOOD_DB_MAX_CONNS"
	envDBAcquireTimeout            = "FOOD_DB_ACQUIRE_TIMEOUT"
	envPostgresAutoMigrate         = "FOOD_POSTGRES_AUTO_MIGRATE"
	envSeedDemoData                = "FOOD_SEED_DEMO_DATA"
	envKafkaBrokers                = "KAFKA_BROKERS"
	envOutboxTopic                 = "FOOD_OUTBOX_TOPIC"
	envOutboxPollInterval          = "FOOD_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize             = "FOOD_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts           = "FOOD_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay            = "FOOD_OUTBOX_RETRY_DELAY"
	envIdempotencyTTL              = "FOOD_IDEMPOTENCY_TTL"
	envIdempotencyCleanupInterval  = "FOOD_IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "FOOD_IDEMPOTENCY_CLEANUP_BATCH_SIZE"
	envCORSOrigins                 = "FOOD_CORS_ORIGINS"
	envLogLevel                    = "FOOD_LOG_LEVEL"
)

type envLookup func(key string) (string, bool)

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не роняют запуск: остаётся значение по умолчанию, причина уходит в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []error) {
	cfg := app.DefaultConfig()
	var warnings []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	positiveInt := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok {
			return
		}
		parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = parsed
	}
	duration := func(key string, dst *time.Duration, valid func(time.Duration) bool, rule string) {
		v, ok := lookup(key)
		if !ok {
			return
		}
		parsed, err := parseDuration(v, valid, rule)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = parsed
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok {
			return
		}
		parsed, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = parsed
	}
	positive := func(d time.Duration) bool { return d > 0 }

	str(envHTTPAddr, &cfg.HTTPAddr)
	str(envGRPCAddr, &cfg.GRPCAddr)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envDatabaseURL, &cfg.PostgresDSN)
	str(envOutboxTopic, &cfg.OutboxTopic)

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}

	positiveInt(envDBMaxConns, &cfg.PostgresMaxConns)
	duration(envDBAcquireTimeout, &cfg.PostgresAcquireTimeout, positive, "must be > 0")
	boolean(envPostgresAutoMigrate, &cfg.PostgresAutoMigrate)
	boolean(envSeedDemoData, &cfg.SeedDemoData)

	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = parseList(v)
	}
	duration(envOutboxPollInterval, &cfg.OutboxPollInterval, positive, "must be > 0")
	positiveInt(envOutboxBatchSize, &cfg.OutboxBatchSize)
	positiveInt(envOutboxMaxAttempts, &cfg.OutboxMaxAttempts)
	duration(envOutboxRetryDelay, &cfg.OutboxRetryDelay, func(d time.Duration) bool { return d >= 0 }, "must be >= 0")

	duration(envIdempotencyTTL, &cfg.IdempotencyTTL, positive, "must be > 0")
	duration(envIdempotencyCleanupInterval, &cfg.IdempotencyCleanupInterval, positive, "must be > 0")
	positiveInt(envIdempotencyCleanupBatchSize, &cfg.IdempotencyCleanupBatchSize)

	if v, ok := lookup(envCORSOrigins); ok {
		if origins := parseList(v); len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q: %w", raw, err)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if !valid(value) {
		return 0, fmt.Errorf("duration %s %s", value, rule)
	}
	return value, nil
}

// parseList разбирает список через запятую, пропуская пустые элементы.
func parseList(raw string) []string {
	chunks := strings.Split(raw, ",")
	items := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if item := strings.TrimSpace(chunk); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
