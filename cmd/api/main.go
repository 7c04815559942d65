package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fileflow/internal/adapters/fetcher"
	"fileflow/internal/adapters/handlers/http/chi"
	downloadhandler "fileflow/internal/adapters/handlers/http/chi/v1/download"
	uploadhandler "fileflow/internal/adapters/handlers/http/chi/v1/upload"
	"fileflow/internal/adapters/repository/postgres"
	"fileflow/internal/adapters/storage/minio"
	"fileflow/internal/config"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/service/download"
	"fileflow/internal/core/service/finalize"
	"fileflow/internal/core/service/operation"
	"fileflow/internal/core/service/outbox"
	"fileflow/internal/core/service/session"

	_ "github.com/lib/pq"
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
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}

	//repositories and services
	unitOfWork := postgres.NewUnitOfWork(db)
	outboxWriter := outbox.NewWriter()
	finalizer := finalize.NewGuard(unitOfWork, logger)
	sessionService := session.NewSessionService(unitOfWork, minioAdapter, finalizer, outboxWriter, cfg.Upload, cfg.Minio.BucketName, logger)

	backoff := domain.Backoff{Base: cfg.Outbox.RetryBackoff, Max: cfg.Outbox.StaleAfter}
	guard := operation.NewIdempotencyGuard(unitOfWork, backoff, logger)
	sourceFetcher := fetcher.NewHTTPFetcher(cfg.Download.FetchTimeout)
	downloadService := download.NewDownloadService(unitOfWork, guard, sourceFetcher, minioAdapter, outboxWriter, cfg.Recovery.DownloadMaxRetries, logger)

	//http
	uploadHandler := uploadhandler.NewUploadHandlerV1(sessionService, logger)
	downloadHandler := downloadhandler.NewDownloadHandlerV1(downloadService, postgres.NewSQLExternalDownloadRepository(db), logger)

	router := chi.NewRouter(logger, uploadHandler, downloadHandler, cfg.Env.Env)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

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
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}
