package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coldcutclub/storefront/app/jobs"
	"github.com/coldcutclub/storefront/config"
	"github.com/coldcutclub/storefront/pkg/cache"
	"github.com/coldcutclub/storefront/pkg/database"
	"github.com/coldcutclub/storefront/pkg/logger"
	"github.com/coldcutclub/storefront/pkg/queue"
)

// queueWorkCmd runs a standalone worker process. Only useful with the
// redis driver, where jobs are shared across processes.
func queueWorkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue:work",
		Short: "Process queued jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Connect(); err != nil {
				return err
			}
			if err := cache.Connect(); err != nil {
				return err
			}

			jobs.RegisterAll()
			if config.QueueDriver() == "redis" {
				queue.SetDriver(queue.NewRedisDriver(cache.RDB))
			} else {
				logger.Warn("queue:work: memory driver holds no shared jobs; set QUEUE_DRIVER=redis")
			}

			workers, err := strconv.Atoi(config.QueueWorkers())
			if err != nil || workers < 1 {
				workers = 4
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			queue.StartWorkers(ctx, workers)
			<-ctx.Done()
			return nil
		},
	}
}
