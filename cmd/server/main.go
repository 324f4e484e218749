package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/smartscale/portfolio-api/internal/auth"
	"github.com/smartscale/portfolio-api/internal/config"
	"github.com/smartscale/portfolio-api/internal/database"
	"github.com/smartscale/portfolio-api/internal/logger"
	"github.com/smartscale/portfolio-api/internal/repository"
	"github.com/smartscale/portfolio-api/internal/server"
	"github.com/smartscale/portfolio-api/internal/services"
	"github.com/smartscale/portfolio-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Error("Server exited with error", zap.Error(err))
		_ = zapLogger.Sync()
		os.Exit(1)
	}
	_ = zapLogger.Sync()
}

func run(cfg *config.Config, log *zap.Logger) error {
	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	credentialRepo := repository.NewCredentialRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(credentialRepo, tokens, log)

	ctx := context.Background()
	if _, err := authService.Bootstrap(ctx, services.BootstrapInput{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}); err != nil {
		return err
	}

	if cfg.SeedSampleProjects {
		if err := database.SeedSampleProjects(db, log); err != nil {
			return err
		}
	}

	backend, err := storage.NewBackend(cfg.Storage)
	if err != nil {
		return err
	}
	log.Info("Asset storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("location", storage.Location(backend)),
	)
	assets := storage.NewAssetManager(backend, cfg.Storage.MaxUploadSize, log)
	projectService := services.NewProjectService(projectRepo, assets, log)

	router := server.NewRouter(cfg, server.Dependencies{
		AuthService:    authService,
		ProjectService: projectService,
		Assets:         assets,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("storage_backend", cfg.Storage.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
