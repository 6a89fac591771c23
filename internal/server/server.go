// Package server boots the storefront: configuration, database, cache,
// storage, queue workers, and the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coldcutclub/storefront/app/jobs"
	"github.com/coldcutclub/storefront/app/routes"
	"github.com/coldcutclub/storefront/config"
	"github.com/coldcutclub/storefront/pkg/cache"
	"github.com/coldcutclub/storefront/pkg/database"
	"github.com/coldcutclub/storefront/pkg/logger"
	"github.com/coldcutclub/storefront/pkg/queue"
	"github.com/coldcutclub/storefront/pkg/storage"
)

// Run boots every subsystem and serves HTTP until SIGINT/SIGTERM.
func Run() error {
	if uri := config.LogMongoURI(); uri != "" {
		h, err := logger.AttachMongoSink(uri, config.LogMongoDatabase(), config.LogMongoCollection())
		if err != nil {
			logger.Warn("boot: mongo log sink unavailable", "error", err)
		} else {
			defer h.Close()
		}
	}

	if err := database.Connect(); err != nil {
		return err
	}

	if err := cache.Connect(); err != nil {
		// The cache layer degrades to direct reads, so this is not fatal.
		logger.Warn("boot: redis unavailable, caching disabled", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := storage.Init(ctx); err != nil {
		return err
	}

	jobs.RegisterAll()
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	workers, err := strconv.Atoi(config.QueueWorkers())
	if err != nil || workers < 1 {
		workers = 4
	}
	queue.StartWorkers(ctx, workers)

	r := routes.Build()

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// No blanket write timeout: the tracking SSE stream stays open.
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("boot: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("boot: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
