// Command bot runs the language-learning Telegram bot: Redis-backed
// sessions and leaderboard, a Groq-powered AI tutor, and background
// reminder and analytics jobs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lingua-hub/lingua-tutor-hub/config"
	"github.com/lingua-hub/lingua-tutor-hub/internal/application"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/leaderboard"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/ratelimit"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/infrastructure/external/groq"
	"github.com/lingua-hub/lingua-tutor-hub/internal/infrastructure/persistence/memory"
	"github.com/lingua-hub/lingua-tutor-hub/internal/infrastructure/persistence/postgres"
	redisstore "github.com/lingua-hub/lingua-tutor-hub/internal/infrastructure/persistence/redis"
	"github.com/lingua-hub/lingua-tutor-hub/internal/infrastructure/scheduler"
	"github.com/lingua-hub/lingua-tutor-hub/internal/interface/telegram"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.AddCaller,
	})
	log.Info("starting",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("env", string(cfg.App.Environment)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Storage ──────────────────────────────────────────────────────────

	var (
		sessions  session.Repository
		board     leaderboard.Repository
		limiter   ratelimit.Limiter
		analytics application.Analytics
		source    scheduler.ReminderSource
	)

	if cfg.Redis.Disabled {
		log.Warn("redis disabled, using in-memory storage")
		sessions = memory.NewSessionRepository()
		board = memory.NewLeaderboardRepository()
		limiter = memory.NewRateLimiter()
	} else {
		store, err := redisstore.NewStore(redisstore.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   3,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			PoolTimeout:  cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer store.Close()
		log.Info("redis connected", logger.String("addr", cfg.Redis.Host))

		repo := redisstore.NewSessionRepository(store)
		sessions = repo
		source = repo
		board = redisstore.NewLeaderboardRepository(store)
		limiter = redisstore.NewRateLimiter(store)
		analytics = redisstore.NewAnalyticsTracker(store)
	}

	// ── Optional analytics archive ───────────────────────────────────────

	var archive scheduler.Archiver
	if cfg.Postgres.Enabled() {
		pool, err := postgres.Connect(ctx, postgres.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: int32(cfg.Postgres.MaxConns),
		})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()

		archive, err = postgres.NewAnalyticsArchive(ctx, pool)
		if err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("analytics archive enabled", logger.String("db", cfg.Postgres.Database))
	}

	// ── AI tutor ─────────────────────────────────────────────────────────

	tutorCfg := groq.DefaultClientConfig(cfg.Groq.APIKey)
	tutorCfg.BaseURL = cfg.Groq.BaseURL
	tutorCfg.Model = cfg.Groq.Model
	tutorCfg.Temperature = cfg.Groq.Temperature
	tutorCfg.MaxTokens = cfg.Groq.MaxTokens
	tutorCfg.Timeout = cfg.Groq.Timeout
	tutorCfg.Logger = log
	tutor := groq.NewClient(tutorCfg)

	// ── Application ──────────────────────────────────────────────────────

	ledger := application.NewProgressLedger(sessions, board, log)
	orch := application.NewOrchestrator(ledger, limiter, tutor, analytics, ratelimit.Policy{
		MaxAttempts: cfg.RateLimit.MaxAttempts,
		Window:      cfg.RateLimit.Window,
	}, log)

	// ── Transport ────────────────────────────────────────────────────────

	bot, err := telegram.New(telegram.Config{
		Token:         cfg.Telegram.Token,
		Debug:         cfg.Telegram.Debug,
		UpdateTimeout: cfg.Telegram.UpdateTimeout,
	}, orch, log)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	// ── Background jobs ──────────────────────────────────────────────────

	if cfg.Scheduler.Enabled && source != nil {
		var reader scheduler.AnalyticsReader
		if tracker, ok := analytics.(*redisstore.AnalyticsTracker); ok {
			reader = tracker
		}
		jobs := scheduler.New(source, bot, reader, archive, log)
		jobs.Start()
		defer jobs.Stop()
		log.Info("scheduler started")
	}

	// ── Run ──────────────────────────────────────────────────────────────

	log.Info("bot running")
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("bot: %w", err)
	}

	log.Info("shutting down")
	return nil
}
