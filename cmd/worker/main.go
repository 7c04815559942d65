package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fileflow/internal/adapters/eventbroker/nats"
	"fileflow/internal/adapters/fetcher"
	redislock "fileflow/internal/adapters/lock/redis"
	"fileflow/internal/adapters/repository/postgres"
	"fileflow/internal/adapters/storage/minio"
	webhooksender "fileflow/internal/adapters/webhook"
	"fileflow/internal/config"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/service/download"
	"fileflow/internal/core/service/finalize"
	"fileflow/internal/core/service/operation"
	"fileflow/internal/core/service/outbox"
	"fileflow/internal/core/service/recovery"
	"fileflow/internal/core/service/session"
	"fileflow/internal/core/service/storageevent"
	"fileflow/internal/core/service/webhook"

	_ "github.com/lib/pq"
)

const (
	storageEventsDurable = "fileflow-storage-events"
	downloadsDurable     = "fileflow-downloads"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("db connection established")

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}
	logger.Info("minio adapter initialized")

	publisher, err := nats.NewNATSPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init NATS publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close NATS publisher", "error", err)
		}
	}()

	lock := redislock.NewLock(cfg.Redis, logger)
	defer func() {
		if err := lock.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}()

	unitOfWork := postgres.NewUnitOfWork(db)
	outboxWriter := outbox.NewWriter()
	finalizer := finalize.NewGuard(unitOfWork, logger)
	sessionService := session.NewSessionService(unitOfWork, minioAdapter, finalizer, outboxWriter, cfg.Upload, cfg.Minio.BucketName, logger)

	backoff := domain.Backoff{Base: cfg.Outbox.RetryBackoff, Max: cfg.Outbox.StaleAfter}
	guard := operation.NewIdempotencyGuard(unitOfWork, backoff, logger)
	sourceFetcher := fetcher.NewHTTPFetcher(cfg.Download.FetchTimeout)
	downloadService := download.NewDownloadService(unitOfWork, guard, sourceFetcher, minioAdapter, outboxWriter, cfg.Recovery.DownloadMaxRetries, logger)

	storageEvents := storageevent.NewStorageEventService(sessionService, logger)
	downloadEvents := download.NewDownloadEventService(downloadService, logger)

	storageConsumer, err := nats.NewNATSConsumer(cfg.NATS, cfg.NATS.EventSubject, storageEventsDurable, logger)
	if err != nil {
		logger.Error("failed to create storage events consumer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storageConsumer.Close(); err != nil {
			logger.Error("failed to close storage events consumer", "error", err)
		}
	}()

	downloadSubject := fmt.Sprintf("%s.%s", cfg.NATS.PublishPrefix, domain.EventTypeDownloadRequested)
	downloadConsumer, err := nats.NewNATSConsumer(cfg.NATS, downloadSubject, downloadsDurable, logger)
	if err != nil {
		logger.Error("failed to create download consumer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := downloadConsumer.Close(); err != nil {
			logger.Error("failed to close download consumer", "error", err)
		}
	}()

	if err := storageConsumer.Subscribe(ctx, storageEvents); err != nil {
		logger.Error("failed to subscribe to storage events", "error", err)
		os.Exit(1)
	}
	if err := downloadConsumer.Subscribe(ctx, downloadEvents); err != nil {
		logger.Error("failed to subscribe to download events", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS subscriptions active")

	scheduler := outbox.NewScheduler(postgres.NewSQLOutboxRepository(db), publisher, lock, cfg.Outbox, logger)
	recoveryService := recovery.NewRecoveryService(unitOfWork, sessionService, minioAdapter, outboxWriter, cfg.Recovery, logger)
	recoveryRunner := recovery.NewRunner(recoveryService, cfg.Recovery, cfg.Upload.FinalizeGrace, cfg.Outbox.StaleAfter, logger)

	var wg sync.WaitGroup

	if cfg.Outbox.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.Start(ctx)
		}()
	}

	if cfg.Recovery.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recoveryRunner.Start(ctx)
		}()
	}

	if cfg.Webhook.Enabled {
		sender := webhooksender.NewSender(cfg.Webhook.Timeout, logger)
		dispatcher := webhook.NewDispatcher(postgres.NewSQLWebhookDeliveryRepository(db), sender, cfg.Webhook, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispatcher.Start(ctx)
		}()
	}

	<-ctx.Done()
	logger.Info("gracefully shutting down worker")

	wg.Wait()
	logger.Info("worker shutdown complete")
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}
