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

	charmlog "github.com/charmbracelet/log"

	"github.com/realfoodscore/backend/config"
	httpDelivery "github.com/realfoodscore/backend/internal/delivery/http"
	"github.com/realfoodscore/backend/internal/infrastructure/cache"
	"github.com/realfoodscore/backend/internal/infrastructure/openfoodfacts"
	"github.com/realfoodscore/backend/internal/logging"
	"github.com/realfoodscore/backend/internal/usecase"
	"github.com/realfoodscore/backend/internal/worker"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	logger.Info("starting Real Food Score",
		"version", version,
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type)

	store, err := cache.FromConfig(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	client := openfoodfacts.NewClient(openfoodfacts.Options{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		Timeout:           cfg.OpenFoodFacts.Timeout,
		RequestsPerSecond: cfg.OpenFoodFacts.RequestsPerSecond,
		Burst:             cfg.OpenFoodFacts.Burst,
		Logger:            logger,
	})

	scorer := usecase.NewScoreService(nil)
	products := usecase.NewProductService(store, client, scorer, usecase.ProductServiceConfig{
		CacheTTL: cfg.Cache.TTL,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := httpDelivery.NewRateLimiter(cfg.RateLimit)
	if limiter != nil {
		go pruneLimiter(ctx, limiter, logger)
	}

	handler := httpDelivery.NewHandler(scorer, products, version, logger)
	router := httpDelivery.SetupRouter(cfg, handler, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// pruneLimiter drops per-IP buckets idle for ten minutes
func pruneLimiter(ctx context.Context, limiter *worker.Limiter, logger *charmlog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Prune(10 * time.Minute); n > 0 {
				logger.Debug("pruned rate limit buckets", "count", n)
			}
		}
	}
}
