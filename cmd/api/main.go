//	@title			Media Upload API
//	@version		1.0
//	@description	Single-endpoint service that forwards a multipart upload to a media storage provider.
//
//	@host		localhost:8000
//	@BasePath	/api

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mediaupload/service/internal/config"
	"github.com/mediaupload/service/internal/logger"
	"github.com/mediaupload/service/internal/media"
	"github.com/mediaupload/service/internal/server"
	"github.com/mediaupload/service/internal/storage"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,

		Development: !cfg.IsProduction(),
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := storage.New(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("storage init failed: %w", err)
	}

	// Wire dependencies: storage → service → handler
	mediaSvc := media.NewService(store, cfg.UploadFolder, log)
	mediaHandler := media.NewHandler(mediaSvc, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(cfg, log, mediaHandler),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logListening(log, cfg)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func logListening(log *zap.Logger, cfg *config.Config) {
	log.Info("file upload service listening",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
		zap.String("provider", cfg.StorageProvider),
	)
}
