package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"quill/internal/config"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
	"quill/internal/handler"
	"quill/internal/metrics"
	"quill/internal/middleware"
	"quill/internal/repository/memory"
	"quill/internal/repository/postgres"
	"quill/internal/service/archive"
	"quill/internal/service/extract"
	"quill/internal/service/notify"
	"quill/internal/service/plagiarism"
	"quill/internal/service/submission"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type stores struct {
	submissions repositories.SubmissionRepository
	published   repositories.PublishedRepository
	txManager   repositories.TransactionManager
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging, optionally mirrored to a log file
	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg, logOutput)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage", cfg.StorageDriver,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.close()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Plagiarism detection
	var checker services.PlagiarismChecker
	switch cfg.PlagiarismProvider {
	case config.PlagiarismHTTP:
		checker = plagiarism.NewRemoteChecker(cfg.PlagiarismAPIURL, cfg.PlagiarismAPIKey, cfg.PlagiarismTimeout)
	default:
		checker = plagiarism.NewLocalChecker(store.published, cfg.PlagiarismThreshold)
	}
	logger.Info("plagiarism checker configured", "checker", checker.Name())

	// Author notifications
	templates, err := notify.LoadTemplates()
	if err != nil {
		log.Fatalf("Failed to load email templates: %v", err)
	}
	var sender notify.Sender
	if cfg.EmailEnabled() {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.Sender(),
			Timeout:  cfg.EmailTimeout,
		})
		logger.Info("email delivery enabled", "smtp_host", cfg.SMTPHost, "smtp_port", cfg.SMTPPort)
	} else {
		sender = notify.NewLogSender(logger)
		logger.Warn("SMTP_HOST not configured, emails will only be logged")
	}
	notifier := notify.NewNotifier(sender, templates, m, logger, cfg.EmailTimeout)

	// Upload archive
	var archiver services.FileArchiver = archive.Disabled{}
	if cfg.ArchiveEnabled() {
		s3Archiver, err := archive.NewS3Archiver(ctx, archive.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to create S3 archiver: %v", err)
		}
		archiver = s3Archiver
		logger.Info("upload archive enabled", "bucket", cfg.S3Bucket)
	}

	submissionService := submission.NewService(submission.Dependencies{
		Submissions: store.submissions,
		Published:   store.published,
		TxManager:   store.txManager,
		Extractor:   extract.NewRegistry(),
		Checker:     checker,
		Notifier:    notifier,
		Archiver:    archiver,
		Metrics:     m,
		Logger:      logger,
	}, submission.Settings{
		MinWordCount:  cfg.MinWordCount,
		PublicBaseURL: cfg.PublicBaseURL,
		PublicPath:    cfg.PublicPath,
	})

	submissionHandler := handler.NewSubmissionHandler(submissionService, cfg.MaxUploadBytes, logger)
	publishedHandler := handler.NewPublishedHandler(submissionService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	handler.RegisterRoutes(mux, submissionHandler, publishedHandler)

	// Build middleware chain
	// Order: CORS → Logging → Recovery → Routes
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)
	h = middleware.Logging(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// openStores selects the repositories for the configured storage driver
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &stores{
			submissions: memory.NewSubmissionRepository(store),
			published:   memory.NewPublishedRepository(store),
			txManager:   memory.NewTransactionManager(store),
			close:       func() {},
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database connected", "submissions_table", tables.Submissions, "published_table", tables.Published)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &stores{
		submissions: postgres.NewSubmissionRepository(repoConfig),
		published:   postgres.NewPublishedRepository(repoConfig),
		txManager:   postgres.NewTransactionManager(repoConfig),
		close:       pool.Close,
	}, nil
}
