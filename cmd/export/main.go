// Command export fetches Wrike tasks, contacts and projects once, writes the
// nested project structure document, and exits non-zero on failure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/roksva123/go-wrike-export/internal/config"
	"github.com/roksva123/go-wrike-export/internal/logging"
	"github.com/roksva123/go-wrike-export/internal/repository"
	"github.com/roksva123/go-wrike-export/internal/service"
	"github.com/roksva123/go-wrike-export/internal/storage"
	"github.com/roksva123/go-wrike-export/internal/wrike"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed load config:", err)
		return 1
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := wrike.NewClient(wrike.Config{
		BaseURL:   cfg.WrikeBaseURL,
		Timeout:   cfg.HTTPTimeout.Duration,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})
	svc := service.NewExportService(client, storage.NewFileSink(cfg.OutputPath, cfg.OutputFormat), logger)
	svc.Parallel = cfg.ParallelFetch

	// Run history is optional for one-shot exports.
	if cfg.DatabaseURL != "" {
		repo, err := repository.NewPostgresRepo(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("run history disabled", "error", err)
		} else {
			defer repo.Close()
			if err := repo.RunMigrations(ctx); err != nil {
				logger.Warn("run history disabled", "error", err)
			} else {
				svc.Recorder = repo
			}
		}
	}

	// Run logs the failing stage with upstream status and body.
	result, err := svc.Run(ctx, cfg.WrikeToken)
	if err != nil {
		return 1
	}

	fmt.Printf("wrote %d projects (%d tasks, %d users) to %s\n",
		result.ProjectCount, result.TaskCount, result.UserCount, result.Destination)
	return 0
}
