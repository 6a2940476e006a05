package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/mounirl1/replystack-sub000/internal/api"
	"github.com/mounirl1/replystack-sub000/internal/browser"
	"github.com/mounirl1/replystack-sub000/internal/config"
	"github.com/mounirl1/replystack-sub000/internal/extractor"
	"github.com/mounirl1/replystack-sub000/internal/kvstore"
	"github.com/mounirl1/replystack-sub000/internal/locations"
	"github.com/mounirl1/replystack-sub000/internal/orchestrator"
	"github.com/mounirl1/replystack-sub000/internal/pipeline"
	"github.com/mounirl1/replystack-sub000/internal/store"
	"github.com/mounirl1/replystack-sub000/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.IsDev())
	log := logger.Log

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var kv kvstore.Store
	if cfg.RedisAddr != "" {
		r := kvstore.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := r.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		kv = r
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis key-value store connected")
	} else {
		kv = kvstore.NewMemory()
		log.Info().Msg("using in-memory key-value store")
	}

	// A bootstrap token from the environment seeds the store; the /api
	// credential handoff replaces it at runtime.
	if cfg.APIToken != "" {
		if err := kv.Set(ctx, kvstore.KeyToken, cfg.APIToken); err != nil {
			log.Fatal().Err(err).Msg("failed to seed bootstrap token")
		}
	}

	tokenSource := func(ctx context.Context) string {
		var token string
		kv.Get(ctx, kvstore.KeyToken, &token)
		return token
	}
	client := store.New(cfg.APIBaseURL, tokenSource, cfg.APIRPS)

	// Initialize global browser
	if err := browser.Init(ctx, cfg.PageLoadDelay, cfg.MaxBrowserTabs); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize browser")
	}
	defer browser.Close()

	registry := extractor.NewRegistry()
	resolver := locations.NewResolver(kv)
	refresher := locations.NewRefresher(client, kv)
	pipe := pipeline.New(kv, client, registry, resolver, nil)
	host := browser.NewHost(browser.Get(), pipe, cfg.TaskSettleDelay, cfg.DebounceQuietWindow)

	orch := orchestrator.New(host, client, kv, orchestrator.Config{
		TaskTimeout:        cfg.TaskTimeout,
		InterTaskDelay:     cfg.InterTaskDelay,
		MinRefreshInterval: cfg.MinRefreshInterval,
		TaskWatchWindow:    cfg.TaskWatchWindow,
	})

	sched, err := orchestrator.NewScheduler(orch, refresher, kv, cfg.AutoExtractInterval, cfg.ProfileInterval, cfg.StartupDelay)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// Start HTTP API server
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             10 * 1024 * 1024,
	})
	api.New(host, orch, kv, registry, cfg.InternalAPIToken).SetupRoutes(app)
	go func() {
		addr := ":" + cfg.HTTPPort
		log.Info().Str("addr", addr).Msg("HTTP API server starting")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	log.Info().
		Str("api", cfg.APIBaseURL).
		Dur("auto_extract_interval", cfg.AutoExtractInterval).
		Msg("replystackd started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel()
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
}
