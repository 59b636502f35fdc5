package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	healthcheck "github.com/vladislavdragonenkov/foodorder/internal/health"
	"github.com/vladislavdragonenkov/foodorder/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
	"github.com/vladislavdragonenkov/foodorder/internal/service/catalog"
	"github.com/vladislavdragonenkov/foodorder/internal/service/idempotency"
	"github.com/vladislavdragonenkov/foodorder/internal/service/ordering"
	"github.com/vladislavdragonenkov/foodorder/internal/service/outbox"
	"github.com/vladislavdragonenkov/foodorder/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/foodorder/internal/version"
)

// Run поднимает HTTP API, gRPC health, сервер метрик и фоновые воркеры
// и блокируется до отмены ctx или ошибки одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		cfg.KafkaBrokers = nil
	}
	defer closeKafkaProducer(kafkaProducer, logger)

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var workers sync.WaitGroup
	startWorker := func(run func(context.Context)) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			run(runCtx)
		}()
	}
	defer workers.Wait()
	defer cancel()

	if kafkaProducer != nil {
		worker := outbox.NewWorker(
			deps.outboxRepo,
			kafka.NewOutboxPublisher(kafkaProducer, cfg.OutboxTopic),
			outbox.Config{
				PollInterval:   cfg.OutboxPollInterval,
				BatchSize:      cfg.OutboxBatchSize,
				MaxAttempts:    cfg.OutboxMaxAttempts,
				RetryBaseDelay: cfg.OutboxRetryDelay,
			},
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(kafka.NewDLQPublisher(kafkaProducer)),
		)
		startWorker(worker.Run)
	}

	cleanup := idempotency.NewCleanupWorker(
		deps.idempotencyRepo,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)
	startWorker(cleanup.Run)

	router := httpapi.NewRouter(httpapi.Deps{
		Catalog: catalog.NewService(deps.catalogRepo, logger.WithField("component", "catalog")),
		Orders: ordering.NewService(
			deps.orderRepo,
			ordering.WithPaytypes(deps.catalogRepo),
			ordering.WithLogger(logger.WithField("component", "ordering")),
		),
		Idempotency: idempotency.NewGuard(deps.idempotencyRepo, cfg.IdempotencyTTL),
		Metrics:     metrics.NewHTTPMetrics(),
		Logger:      logger.WithField("component", "http-api"),
		CORSOrigins: cfg.CORSOrigins,
	})

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.storageChecker)
	if kafkaProducer != nil {
		healthHandler.RegisterChecker("outbox", healthcheck.NewOptionalChecker("outbox", func(ctx context.Context) error {
			_, err := deps.outboxRepo.Stats(ctx)
			return err
		}))
	}
	metricsSrv := startMetricsServer(runCtx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	grpcServer, healthServer := newGRPCServer(logger)
	startWorker(func(ctx context.Context) {
		watchStorageHealth(ctx, healthServer, deps.ping, healthCheckInterval, logger)
	})

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("gRPC server listening on %s", grpcLis.Addr())
		if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()
	logger.WithField("version", version.String()).Infof("HTTP API listening on %s", httpLis.Addr())
	apiSrv := serveHTTP(httpLis, router, errCh)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownHTTP(apiSrv, logger)
		stopGRPC(grpcServer, healthServer, shutdownTimeout, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(apiSrv, logger)
		stopGRPC(grpcServer, healthServer, shutdownTimeout, logger)
		return err
	}
}
