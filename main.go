package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/handlers"
	"marketplace/internal/logger"
	"marketplace/internal/metrics"
	"marketplace/internal/middleware"
	"marketplace/internal/seed"
	"marketplace/internal/services"
	"marketplace/internal/storage"
	"marketplace/pkg/rabbitmq"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		slog.Error("marketplace api exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	stores, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			slog.Warn("failed to close database", slog.Any("error", err))
		}
	}()
	slog.Info("database ready", slog.String("driver", cfg.DBDriver))

	if cfg.SeedOnStart {
		if _, err := seed.Run(ctx, stores.Products, stores.Users, bcrypt.DefaultCost); err != nil {
			return err
		}
	}

	images, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	// --- Events ---
	// A nil interface keeps services from publishing when RabbitMQ is disabled.
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return err
		}
		defer mqClient.Close()
		events = mqClient

		slog.Info("starting rabbitmq consumer", slog.String("queue", rabbitmq.EventsQueue))
		if err := mqClient.ConsumeEvents(rabbitmq.LogEvent); err != nil {
			slog.Error("failed to start rabbitmq consumer", slog.Any("error", err))
		}
	} else {
		slog.Info("RABBITMQ_URL not set, event publishing disabled")
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// --- Services ---
	authService := services.NewAuthService(stores.Users, cfg.JWTSecret, cfg.JWTTTL, collector)
	productService := services.NewProductService(stores.Products, stores.Users, events)
	favoriteService := services.NewFavoriteService(stores.Users, stores.Products, events, collector)

	app := handlers.NewRouter(&handlers.RouterDeps{
		AuthService:     authService,
		ProductService:  productService,
		FavoriteService: favoriteService,
		Images:          images,
		LoginLimiter:    middleware.NewRateLimiter(cfg.LoginRatePerMinute, 10*time.Minute),
		Metrics:         collector,
		Gatherer:        registry,
		AccessLog:       true,
	})

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("addr", cfg.AppPort))
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("error during fiber shutdown", slog.Any("error", err))
	}
	slog.Info("server gracefully stopped")
	return nil
}
