package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/foodorder/internal/health"
	"github.com/vladislavdragonenkov/foodorder/internal/storage/memory"
	"github.com/vladislavdragonenkov/foodorder/internal/storage/postgres"
)

// runtimeDependencies — хранилища, выбранные по StorageDriver.
type runtimeDependencies struct {
	catalogRepo     domain.CatalogRepository
	orderRepo       domain.OrderRepository
	outboxRepo      domain.OutboxRepository
	idempotencyRepo domain.IdempotencyRepository
	storageChecker  healthcheck.Checker
	ping            func(ctx context.Context) error
	closeFn         func() error
}

func (d *runtimeDependencies) close() error {
	if d == nil || d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		return initMemoryDependencies(cfg, logger)
	case StorageDriverPostgres:
		return initPostgresDependencies(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func initMemoryDependencies(cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	store := memory.NewStore()
	if cfg.SeedDemoData {
		if err := store.Seed(memory.DemoSeed()); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
	}

	outboxRepo := memory.NewOutboxRepository()
	var orderOpts []memory.OrderRepositoryOption
	if cfg.outboxEnabled() {
		orderOpts = append(orderOpts, memory.WithOutbox(outboxRepo))
	}

	ping := func(ctx context.Context) error { return ctx.Err() }
	logger.WithField("seed", cfg.SeedDemoData).Info("using memory storage")

	return &runtimeDependencies{
		catalogRepo:     memory.NewCatalogRepository(store),
		orderRepo:       memory.NewOrderRepository(store, orderOpts...),
		outboxRepo:      outboxRepo,
		idempotencyRepo: memory.NewIdempotencyRepository(),
		storageChecker:  healthcheck.NewSimpleChecker("storage", ping),
		ping:            ping,
	}, nil
}

func initPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	dsn := strings.TrimSpace(cfg.PostgresDSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required for postgres storage driver")
	}

	store, err := postgres.Open(ctx, dsn, postgres.PoolConfig{
		MaxConns:       cfg.PostgresMaxConns,
		AcquireTimeout: cfg.PostgresAcquireTimeout,
	})
	if err != nil {
		return nil, err
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
		state, err := store.MigrationStatus(ctx)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.WithFields(log.Fields{
			"version": state.Version,
			"applied": state.Applied,
		}).Info("postgres schema is up to date")
	}

	var orderOpts []postgres.OrderRepositoryOption
	if cfg.outboxEnabled() {
		orderOpts = append(orderOpts, postgres.WithOutboxEvents())
	}

	logger.WithField("max_conns", cfg.PostgresMaxConns).Info("using postgres storage")

	return &runtimeDependencies{
		catalogRepo:     postgres.NewCatalogRepository(store),
		orderRepo:       postgres.NewOrderRepository(store, orderOpts...),
		outboxRepo:      postgres.NewOutboxRepository(store),
		idempotencyRepo: postgres.NewIdempotencyRepository(store),
		storageChecker:  healthcheck.NewSimpleChecker("storage", store.Ping),
		ping:            store.Ping,
		closeFn:         store.Close,
	}, nil
}
