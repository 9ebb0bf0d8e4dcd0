package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"antilurk/internal/config"
	"antilurk/internal/handler"
	"antilurk/internal/middleware"
	"antilurk/internal/repository/postgres"
	"antilurk/internal/service"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Anti-Lurk Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	channels, err := config.LoadChannels(cfg.ChannelsFile)
	if err != nil {
		logger.Fatal("Failed to load channels config", zap.Error(err))
	}

	puzzles, err := config.LoadPuzzles(cfg.PuzzlesFile)
	if err != nil {
		logger.Fatal("Failed to load puzzles config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.Int("channels", len(channels.Channels)),
		zap.Int("puzzles", len(puzzles.Puzzles)),
	)

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	// Initialize repositories
	directory := postgres.NewDirectoryRepo(db)
	provLog := postgres.NewProvocationLogRepo(db)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize core services
	notifier := handler.NewTelegramNotifier(bot, logger)
	tracker := service.NewProvocationTracker(logger)
	limiter := service.NewRateLimiter(provLog, cfg.Global.RateLimitPerHour, cfg.Global.RateLimitPerDay, logger)
	backlog := service.NewBacklogManager(logger)
	selector := service.NewLurkerSelector(directory, provLog, logger)
	challenges := service.NewChallengeEngine(tracker, notifier, puzzles.Puzzles, channels, cfg.Global.ChallengeTTLMinutes, logger)
	auditEngine := service.NewAuditEngine(selector, limiter, backlog, challenges, channels, cfg.Global, logger)
	scheduler := service.NewScheduler(auditEngine, cfg.Global.AuditCadenceMinutes, logger)
	reports := service.NewReportService(tracker, backlog, limiter, logger)

	// Initialize handler
	h := handler.NewHandler(bot, challenges, tracker, reports, logger)
	h.RegisterHandlers(middleware.AdminOnly(bot, logger))

	logger.Info("Handlers registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start audit scheduler and expiry sweeper in background
	scheduler.Start(ctx)
	go runExpirySweeper(ctx, challenges, logger)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	scheduler.Stop()
	cancel()

	logger.Info("Bot stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.Info("No new migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations applied successfully")
	return nil
}

// runExpirySweeper periodically sweeps challenges past their TTL.
// The sweep runs independently of the audit scheduler.
func runExpirySweeper(ctx context.Context, challenges *service.ChallengeEngine, logger *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			result := challenges.ProcessExpired(ctx)
			if result.Expired > 0 {
				logger.Info("Expiry sweep completed",
					zap.Int("expired", result.Expired),
					zap.Int("processed", result.Processed),
					zap.Int("notifications_sent", result.NotificationsSent),
				)
			}
		}
	}
}
