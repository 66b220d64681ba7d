package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/config"
	"github.com/stemsi/anonq-bot/internal/database"
	"github.com/stemsi/anonq-bot/internal/events"
	"github.com/stemsi/anonq-bot/internal/handler"
	"github.com/stemsi/anonq-bot/internal/idgen"
	"github.com/stemsi/anonq-bot/internal/logger"
	"github.com/stemsi/anonq-bot/internal/middleware"
	"github.com/stemsi/anonq-bot/internal/platform"
	"github.com/stemsi/anonq-bot/internal/publisher"
	"github.com/stemsi/anonq-bot/internal/repository"
	"github.com/stemsi/anonq-bot/internal/router"
	"github.com/stemsi/anonq-bot/internal/service"
	"github.com/stemsi/anonq-bot/internal/validator"
	"github.com/stemsi/anonq-bot/internal/worker"
)

const (
	// ipRatePerMin throttles the ops HTTP surface per client IP.
	ipRatePerMin = 120
	ipRateBurst  = 20
	rateKeyTTL   = 10 * time.Minute

	workerWaitLogEvery = 5 * time.Second
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.DiscordToken == "" {
		log.Fatal().Msg("DISCORD_TOKEN is not set")
	}
	log.Info().
		Str("env", cfg.AppEnv).
		Str("store", cfg.StoreDriver).
		Str("port", cfg.HTTPPort).
		Str("log_level", cfg.LogLevel).
		Msg("Starting anonq bot")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pingers := map[string]handler.Pinger{}

	// ─── Storage ───────────────────────────────────────────────────────
	var store repository.Store
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("Using the in-memory store; questions are lost on restart")
		store = repository.NewMemoryStore()
	default:
		if cfg.RunMigrations {
			if err := database.MigrateUp(cfg.DatabaseURL, log); err != nil {
				log.Fatal().Err(err).Msg("Failed to apply migrations")
			}
		}
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		store = repository.NewPostgresStore(pool)
		pingers["postgres"] = pool
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	pingers["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })

	// ─── Discord ───────────────────────────────────────────────────────
	discord, err := platform.New(cfg.DiscordToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	bus := events.NewRedisBus(rdb, log)
	statService := service.NewStatisticService(store, log)
	if err := statService.EnsureDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed statistics")
	}
	members := service.NewCachedMemberChecker(discord, rdb, cfg.MemberCacheTTL, log)
	questionService := service.NewQuestionService(store, idgen.New(), members, discord, bus, log)
	authService := service.NewAuthService(cfg, rdb)

	// ─── Discord Handlers ──────────────────────────────────────────────
	askLimiter := middleware.NewRateLimiter(cfg.AskRatePerMin, cfg.AskRateBurst, rateKeyTTL)
	respondLimiter := middleware.NewRateLimiter(cfg.RespondRatePerMin, cfg.RespondRateBurst, rateKeyTTL)
	commandHandler := handler.NewCommandHandler(questionService, discord, askLimiter, respondLimiter, log)
	adminHandler := handler.NewAdminHandler(cfg, discord, questionService, statService, log)
	discord.Session().AddHandler(commandHandler.OnInteraction)
	discord.Session().AddHandler(adminHandler.OnMessage)

	if err := discord.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open Discord gateway")
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	pub := publisher.NewPublisher(discord, cfg.PublishDelay, log)
	lease := worker.NewRedisLease(rdb, config.CacheKey.SweepLeaseKey(), worker.SweepLeaseTTL)
	closingWorker := worker.NewClosingWorker(store, pub, lease, bus, cfg.SweepInterval, log)
	go func() {
		defer close(workerDone)
		closingWorker.Start(workerCtx)
	}()

	// ─── Ops HTTP Server ───────────────────────────────────────────────
	handlers := &router.Handlers{
		Ops: handler.NewOpsHandler(pingers, statService, questionService, log),
		WS:  handler.NewWSHandler(bus, log, cfg.AllowedOrigins),
	}
	ipLimiter := middleware.NewRateLimiter(ipRatePerMin, ipRateBurst, rateKeyTTL)
	r := router.SetupRouter(authService, handlers, cfg, ipLimiter)
	if !authService.Enabled() {
		log.Warn().Msg("OPS_JWT_SECRET is empty; only /healthz is served")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.HTTPPort).Msg("Ops server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop taking new interactions. REST sends keep working without the gateway.
	if err := discord.Close(); err != nil {
		log.Error().Err(err).Msg("Discord close error")
	}

	// 2. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 3. Stop the closing worker. A sweep in flight finishes its current
	// publication, however many responses it still has to disclose.
	workerCancel()
	waitForWorker(workerDone, log)

	log.Info().Msg("Shutdown complete")
}

// waitForWorker blocks until done is closed, with no deadline. It logs a
// warning every workerWaitLogEvery so a long disclosure is visible.
func waitForWorker(done <-chan struct{}, log zerolog.Logger) {
	ticker := time.NewTicker(workerWaitLogEvery)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			log.Warn().Msg("Waiting for the closing worker to finish publishing results")
		}
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
