package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hravenhq/hraven/internal/database"
	"github.com/hravenhq/hraven/internal/mailer"
	"github.com/hravenhq/hraven/internal/tasks"
	"github.com/hravenhq/hraven/pkg/config"
	"github.com/hravenhq/hraven/pkg/queue"
	"github.com/hravenhq/hraven/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting HRaven worker")

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Pick the mailer: real SMTP in production, log-only in development
	var m mailer.Mailer
	if cfg.Server.IsDevelopment() {
		m = mailer.NewLogMailer(logger)
	} else {
		m = mailer.NewSMTPMailer(&cfg.SMTP)
	}

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// Create task handler
	handler := tasks.NewHandler(db, logger, m, cfg.Upload.Dir)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Nightly sweep of orphaned avatar and logo files
	scheduler := queue.NewScheduler(&cfg.Redis)
	if _, err := scheduler.Register("@every 24h", tasks.NewBlobSweepTask()); err != nil {
		logger.Error("failed to register blob sweep", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		scheduler.Shutdown()
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
