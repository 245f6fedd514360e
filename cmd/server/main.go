package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/swisscut/brackets"
	"github.com/Dosada05/swisscut/catalog"
	"github.com/Dosada05/swisscut/config"
	"github.com/Dosada05/swisscut/db"
	"github.com/Dosada05/swisscut/handlers"
	"github.com/Dosada05/swisscut/repositories"
	api "github.com/Dosada05/swisscut/routes"
	"github.com/Dosada05/swisscut/services"
	"github.com/Dosada05/swisscut/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		return err
	}
	logger.Info("database connection established")

	// Каталог карт NetrunnerDB с кэшем в sqlite
	store, err := catalog.OpenStore(cfg.CatalogCachePath)
	if err != nil {
		return err
	}
	defer store.Close()
	cardCatalog := catalog.New(store, catalog.NewClient(cfg.CatalogClient(), logger), time.Now, cfg.CatalogTTL, logger)
	go func() {
		if err := cardCatalog.Refresh(ctx); err != nil {
			logger.Warn("initial catalog refresh failed", slog.Any("error", err))
		}
	}()

	// Загрузка отчётов в Cloudflare R2 (необязательно)
	var uploader storage.FileUploader
	if cfg.R2.Complete() {
		if uploader, err = storage.NewCloudflareR2Uploader(ctx, cfg.R2); err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Warn("R2 is not configured, report publishing disabled")
	}

	wsHub := brackets.NewHub()
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	cutRepo := repositories.NewPostgresCutRepository(dbConn)

	standingsService := services.NewStandingsService(tournamentRepo, cardCatalog, logger)
	reportService := services.NewReportService(tournamentRepo, uploader, wsHub, logger)
	bracketService := services.NewBracketService(dbConn, tournamentRepo, cutRepo, wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router,
		api.Options{
			JWTSecret:      []byte(cfg.JWTSecretKey),
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:         logger,
		},
		handlers.NewTournamentHandler(standingsService, reportService, bracketService),
		handlers.NewCatalogHandler(cardCatalog),
		handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}
