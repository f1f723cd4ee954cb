package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-listings/internal/cleanup"
	"property-listings/internal/config"
	"property-listings/internal/database"
	"property-listings/internal/handlers"
	"property-listings/internal/logging"
	"property-listings/internal/ratelimit"
	"property-listings/internal/scheduler"
	"property-listings/internal/service"
	"property-listings/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/config.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		logrus.WithError(err).WithField("path", configPath).Fatal("Failed to load configuration")
	}

	logger := logging.New(appConfig.Logging)
	logger.WithField("path", configPath).Info("Loaded configuration")

	if err := run(appConfig, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped with error")
	}
}

func run(appConfig *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := database.Open(appConfig.Database)
	if err != nil {
		return err
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		return err
	}
	logger.WithField("type", appConfig.Database.Type).Info("Database ready")

	blobs, err := openBlobStore(ctx, appConfig.Storage)
	if err != nil {
		return err
	}
	logger.WithField("storage", blobs.Describe(ctx)).Info("Blob store ready")

	agents := service.NewAgentService(gormDB, logger)
	images := service.NewImageService(gormDB, blobs, appConfig.Storage.PublicBaseURL, logger)
	properties := service.NewPropertyService(gormDB, agents, images, logger)

	rl := appConfig.RateLimit
	rateLimiter := ratelimit.NewRateLimiter(rl.UploadsPerMinute, rl.UploadsPerHour, rl.Enabled)
	logger.WithFields(logrus.Fields{
		"per_minute": rl.UploadsPerMinute,
		"per_hour":   rl.UploadsPerHour,
		"enabled":    rl.Enabled,
	}).Info("Upload rate limiter initialized")

	cleanupService := cleanup.NewService(gormDB, blobs, logger)
	appScheduler := scheduler.NewScheduler(cleanupService, appConfig.Cleanup, logger)
	if err := appScheduler.Start(); err != nil {
		return err
	}
	defer appScheduler.Stop()

	maxUpload := appConfig.Server.MaxUploadBytes()
	gin.SetMode(gin.ReleaseMode)
	r := handlers.NewRouter(handlers.Handlers{
		Agents:     handlers.NewAgentHandler(agents, logger),
		Properties: handlers.NewPropertyHandler(properties, logger),
		Images:     handlers.NewImageHandler(properties, images, maxUpload, logger),
		Static:     handlers.NewStaticHandler(blobs, logger),
		Admin:      handlers.NewAdminHandler(gormDB, blobs, cleanupService, appScheduler, rateLimiter, appConfig, logger),
	}, appConfig.Server.AllowedOrigins, maxUpload, rateLimiter, logger)

	srv := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", appConfig.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openBlobStore builds the configured Blob Store backend
func openBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, error) {
	if cfg.Type == config.StorageS3 {
		client, err := storage.NewS3Client(ctx, cfg.S3.Region, cfg.S3.Endpoint)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix), nil
	}
	local, err := storage.NewLocalStore(cfg.ImageDirectory)
	if err != nil {
		return nil, err
	}
	return local, nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
