package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lmittmann/tint"

	httpapi "github.com/lromero/covid-data-pipeline/internal/api/http"
	"github.com/lromero/covid-data-pipeline/internal/config"
	"github.com/lromero/covid-data-pipeline/internal/covid"
	"github.com/lromero/covid-data-pipeline/internal/fetch"
	"github.com/lromero/covid-data-pipeline/internal/gitpub"
	"github.com/lromero/covid-data-pipeline/internal/scheduler"
	"github.com/lromero/covid-data-pipeline/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.TimeOnly}))

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	fetcher := fetch.NewClient(httpClient, cfg.APIBaseURL)
	archive := store.NewParquetArchive()

	// Publisher is optional: dry runs write the snapshot without committing.
	var publisher covid.Publisher
	if !cfg.SkipPublish {
		publisher = gitpub.New(cfg.GitConfig())
	} else {
		log.Info("publishing disabled, snapshot will only be written locally")
	}

	pipeline := covid.NewPipeline(fetcher, archive, publisher, cfg.OutputPath, cfg.CommitLabel, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Default mode: one run, then exit.
	if cfg.Schedule == 0 {
		if _, err := pipeline.Run(ctx); err != nil {
			return err
		}
		return nil
	}

	return runScheduled(ctx, cfg, pipeline, log)
}

// runScheduled keeps the pipeline on an interval and serves the status API
// until the process is signalled.
func runScheduled(ctx context.Context, cfg *config.AppConfig, pipeline *covid.Pipeline, log *slog.Logger) error {
	history := store.NewRunHistory(cfg.RunHistoryLimit)

	sched := scheduler.New(pipeline, history, cfg.Schedule, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "covid-data-pipeline",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "covid-data-pipeline",
		})
	})

	httpapi.RegisterRoutes(app, history)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("status server stopped", "error", err)
		}
	}()

	log.Info("running on schedule", "interval", cfg.Schedule, "port", cfg.Port)
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	return nil
}
