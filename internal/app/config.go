package app

import "time"

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver          StorageDriver
	PostgresDSN            string
	PostgresMaxConns       int
	PostgresAcquireTimeout time.Duration
	PostgresAutoMigrate    bool
	// SeedDemoData заполняет memory-хранилище демонстрационным каталогом.
	SeedDemoData bool

	KafkaBrokers       []string
	OutboxTopic        string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	IdempotencyTTL              time.Duration
	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int

	CORSOrigins []string
}

// DefaultConfig возвращает базовые адреса и параметры пула из исходной конфигурации сервиса.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8000",
		GRPCAddr:    ":50051",
		MetricsAddr: ":9090",

		StorageDriver:          StorageDriverMemory,
		PostgresMaxConns:       65,
		PostgresAcquireTimeout: 20 * time.Second,
		PostgresAutoMigrate:    true,
		SeedDemoData:           true,

		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   50 * time.Millisecond,

		IdempotencyTTL:              24 * time.Hour,
		IdempotencyCleanupInterval:  time.Minute,
		IdempotencyCleanupBatchSize: 500,

		CORSOrigins: []string{"*"},
	}
}

// outboxEnabled — события пишутся в outbox только когда есть куда их публиковать.
func (c Config) outboxEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
