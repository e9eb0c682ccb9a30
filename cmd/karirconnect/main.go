package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/karirconnect/backoffice/internal/company/config"
	"github.com/karirconnect/backoffice/internal/company/controller"
	gorm "github.com/karirconnect/backoffice/internal/company/db"
	"github.com/karirconnect/backoffice/internal/company/events"
	"github.com/karirconnect/backoffice/internal/company/handlers"
	"github.com/karirconnect/backoffice/internal/company/notify"
	"github.com/karirconnect/backoffice/internal/company/storage"
	"go.uber.org/zap"
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			logger.Error("failed to sync logger", zap.Error(err))
		}
	}(logger)

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := connectDatabase(initDatabase(cfg), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer, closeEvents := initEvents(ctx, cfg, logger)
	defer closeEvents()

	files, fileServer, err := initStorage(cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}

	companySvc := controller.NewCompanyService(repo, files, producer, logger)
	verificationSvc := controller.NewVerificationService(repo, files, producer, logger)

	// Create handlers
	notifier := notify.NewFlashDispatcher(logger)
	router, err := handlers.NewRouter(handlers.RouterConfig{
		Companies:     handlers.NewCompanyHandler(companySvc, notifier, logger),
		Verifications: handlers.NewVerificationHandler(verificationSvc, notifier, logger),
		Users:         repo,
		JWTSecret:     cfg.JWTSecret,
		Files:         fileServer,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	// Create server
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	server.RegisterHTTPHandler(router)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// initDatabase initializes the database connection settings.
func initDatabase(cfg *config.Config) *gorm.Config {
	return &gorm.Config{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Path:     cfg.DBPath,
	}
}

// connectDatabase retries the first connection while the database starts up.
func connectDatabase(dbConf *gorm.Config, logger *zap.Logger) (*gorm.Repository, error) {
	var repo *gorm.Repository
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Minute

	err := backoff.RetryNotify(func() error {
		r, err := gorm.NewRepository(dbConf)
		if err != nil {
			return err
		}
		repo = r
		return nil
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("database not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	return repo, err
}

// initEvents starts the Kafka producer and the audit consumer, or a no-op
// producer when no brokers are configured.
func initEvents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (controller.EventProducer, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no Kafka brokers configured, events are discarded")
		return events.NewNopProducer(logger), func() {}
	}

	if err := events.EnsureTopic(cfg.KafkaBrokers, cfg.Topic, logger); err != nil {
		logger.Warn("failed to reach Kafka, events will be retried by the writer", zap.Error(err))
	}
	producer := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)

	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, cfg.Topic, logger)
	consumer.RegisterHandler(events.AuditLogger(logger))
	consumer.Start(ctx)

	return producer, func() {
		consumer.Close()
		producer.Close()
	}
}

// initStorage picks Cloudinary when configured and the local disk otherwise.
// The returned file server is nil for Cloudinary, whose URLs are absolute.
func initStorage(cfg *config.Config) (storage.Store, http.Handler, error) {
	if cfg.CloudinaryURL != "" {
		cld, err := storage.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			return nil, nil, err
		}
		return cld, nil, nil
	}
	disk := storage.NewDisk(cfg.StorageDir)
	return disk, disk.FileServer(), nil
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
