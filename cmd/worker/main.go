package main

import (
	"context"
	"os/signal"
	"syscall"

	"pathshala/internal/config"
	"pathshala/internal/logger"
	"pathshala/internal/mailer"
	"pathshala/internal/pgmq"
	"pathshala/internal/repository"
	"pathshala/internal/secrets"
	"pathshala/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Initialize logger
	logger := logger.New()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize DB connection pool
	pool, err := pgxpool.New(ctx, cfg.DBConnectionString)
	if err != nil {
		logger.Fatal().Msgf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
	}
	logger.Info().Msg("Database connection established")

	// Initialize PGMQ client
	pgmqClient := pgmq.New(pool)
	logger.Info().Msg("PGMQ client initialized")

	// Resolve the SendGrid key, falling back to Secret Manager
	apiKey := cfg.SendGridAPIKey
	if apiKey == "" && cfg.GCPProjectID != "" {
		manager, err := secrets.NewManager(ctx, cfg.GCPProjectID)
		if err != nil {
			logger.Fatal().Msgf("Failed to create Secret Manager client: %v", err)
		}
		apiKey, err = manager.Fetch(ctx, cfg.SendGridAPIKeySecret)
		if err != nil {
			logger.Fatal().Msgf("Failed to fetch SendGrid key: %v", err)
		}
		manager.Close()
	}

	var m mailer.Mailer
	if apiKey != "" {
		m = mailer.NewSendGridMailer(apiKey, cfg.EmailFromName, cfg.EmailFromAddress, logger)
	} else {
		logger.Warn().Msg("No SendGrid key configured; logging email to console")
		m = mailer.NewConsoleMailer(logger)
	}

	w := worker.New(
		cfg,
		pgmqClient,
		m,
		repository.NewStudentRepo(pool),
		repository.NewCourseRepo(pool),
		repository.NewMaterialRepo(pool),
		repository.NewNotificationRepo(pool),
		logger,
	)

	if err := w.Run(ctx); err != nil {
		logger.Fatal().Msgf("Approval worker failed: %v", err)
	}

	logger.Info().Msg("Approval worker stopped gracefully")
}
