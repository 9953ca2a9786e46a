package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/devq-ai/ptolemies-sub002/internal/cache"
	"github.com/devq-ai/ptolemies-sub002/internal/config"
	"github.com/devq-ai/ptolemies-sub002/internal/engine"
	"github.com/devq-ai/ptolemies-sub002/internal/llm"
	"github.com/devq-ai/ptolemies-sub002/internal/logging"
	"github.com/devq-ai/ptolemies-sub002/internal/pipeline"
	"github.com/devq-ai/ptolemies-sub002/internal/query"
	"github.com/devq-ai/ptolemies-sub002/internal/server"
	"github.com/devq-ai/ptolemies-sub002/internal/session"
	"github.com/devq-ai/ptolemies-sub002/internal/store"
)

func main() {
	// No .env is fine, environment may be set directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	applyEnvOverrides(cfg)

	log := logging.New(cfg.Server.LogLevel)
	if err == nil {
		log.Info().Str("path", cfgPath).Msg("loaded config")
	} else {
		log.Warn().Err(err).Msg("config file unavailable, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedder, err := llm.NewEmbedder(ctx, cfg.Embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	semantic, err := store.NewSemanticStore(embedder, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize semantic store")
	}

	graph, err := store.NewGraphStore(ctx, cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to graph store")
	}
	defer graph.Close(context.Background())

	if err := graph.BuildIndices(ctx); err != nil {
		log.Warn().Err(err).Msg("index bootstrap failed")
	}

	eng, err := engine.New(semantic, graph, engine.Config{
		BackendTimeout: cfg.Engine.BackendTimeout(),
		MaxGraphDepth:  cfg.Engine.MaxGraphDepth,
		PoolSize:       cfg.Engine.PoolSize,
		TopK:           cfg.Engine.TopK,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize engine")
	}
	defer eng.Close()

	sessions := session.NewMemoryStore(cfg.Session.Timeout(), cfg.Session.MaxHistory, log)
	sessions.StartSweeper(ctx, cfg.Session.SweepInterval())

	cacheClient := newCache(cfg.Cache, log)
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	processor := query.NewProcessor(embedder, cfg.Processor.MaxExpansions, log)
	orchestrator := pipeline.NewOrchestrator(processor, eng, sessions, cacheClient,
		cfg.Cache.TTL(), cfg.Engine.DefaultLimit, cfg.Session.MaxHistory, log)

	srv := server.New(orchestrator, semantic, graph, log)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.SetupRouter(),
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func newCache(cfg config.CacheConfig, log zerolog.Logger) cache.Cache {
	switch cfg.Backend {
	case "redis":
		return cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory":
		c, err := cache.NewMemoryCache(cfg.MaxCostBytes)
		if err != nil {
			log.Warn().Err(err).Msg("memory cache unavailable, caching disabled")
			return nil
		}
		return c
	default:
		return nil
	}
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("GRAPH_URI"); v != "" {
		cfg.Graph.URI = v
	}
	if v := os.Getenv("GRAPH_USER"); v != "" {
		cfg.Graph.User = v
	}
	if v := os.Getenv("GRAPH_PASSWORD"); v != "" {
		cfg.Graph.Password = v
	}
	if v := os.Getenv("EMBEDDER_PROVIDER"); v != "" {
		cfg.Embedder.Provider = v
	}
	if v := os.Getenv("EMBEDDER_MODEL"); v != "" {
		cfg.Embedder.Model = v
	}
	if v := os.Getenv("EMBEDDER_API_KEY"); v != "" {
		cfg.Embedder.APIKey = v
	}
	if v := os.Getenv("EMBEDDER_BASE_URL"); v != "" {
		cfg.Embedder.BaseURL = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
}
