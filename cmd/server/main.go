package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skybridge/internal/config"
	"skybridge/internal/handler"
	"skybridge/internal/repository"
	"skybridge/internal/service"
	"skybridge/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("SkyBridge booking agent",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.GinMode)

	extractor, closeExtractor, err := newExtractor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeExtractor()

	sessions, closeSessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	engine := service.NewEngine(extractor,
		service.WithConfirmationMatcher(service.NewConfirmationMatcher(cfg.Dialogue.ExtraConfirmWords...)),
		service.WithEngineLogger(logger.Named("dialogue")),
	)

	agentOpts := []service.AgentOption{service.WithAgentLogger(logger.Named("agent"))}
	if cfg.FillLogEnabled() {
		fills, err := repository.NewFillLogRepository(cfg.PostgreSQL.DSN, cfg.PostgreSQL.MaxConnections, cfg.PostgreSQL.MaxIdleConnections)
		if err != nil {
			return fmt.Errorf("fill log: %w", err)
		}
		defer fills.Close()

		schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = fills.EnsureSchema(schemaCtx)
		cancel()
		if err != nil {
			return err
		}
		agentOpts = append(agentOpts, service.WithFillLog(fills))
		logger.Info("confirmed-fill log enabled")
	}
	agent := service.NewAgentService(engine, sessions, agentOpts...)

	limiter := handler.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, logger.Named("ratelimit"))
	limiter.StartSweeper(ctx, time.Minute, handler.RateLimiterIdleTTL)

	routerOpts := handler.RouterOptions{
		Agent:          agent,
		Build:          handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Limiter:        limiter,
		Logger:         logger.Named("http"),
	}
	if cfg.Server.StaticDir != "" {
		routerOpts.Static = os.DirFS(cfg.Server.StaticDir)
		logger.Info("serving frontend", zap.String("dir", cfg.Server.StaticDir))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler.NewRouter(routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newExtractor returns nil when the selected provider has no credentials
func newExtractor(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Extractor, func(), error) {
	noop := func() {}
	if !cfg.ExtractorEnabled() {
		logger.Warn("extractor is not configured, turns will answer ai_unavailable",
			zap.String("provider", cfg.Extractor.Provider))
		return nil, noop, nil
	}

	var (
		base   service.Extractor
		closer io.Closer
	)
	switch cfg.Extractor.Provider {
	case config.ProviderGemini:
		g, err := service.NewGeminiExtractor(ctx, &cfg.Gemini, logger.Named("gemini"))
		if err != nil {
			return nil, noop, err
		}
		base, closer = g, g
	default:
		base = service.NewOpenAIClient(&cfg.OpenAI, logger.Named("openai"))
	}

	closeFn := noop
	if closer != nil {
		closeFn = func() { _ = closer.Close() }
	}
	return service.WithRetry(base, cfg.Extractor.Provider, cfg.Extractor.Timeout, logger.Named("extractor")), closeFn, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.SessionStore, func(), error) {
	if cfg.Session.Store == config.StoreRedis {
		store, err := repository.NewRedisSessionStore(ctx, repository.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Session.TTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		logger.Info("using redis session store", zap.String("addr", cfg.Redis.Addr))
		return store, func() { _ = store.Close() }, nil
	}

	store := repository.NewMemorySessionStore(cfg.Session.TTL)
	sweepCtx, cancel := context.WithCancel(ctx)
	store.StartSweeper(sweepCtx, time.Minute)
	logger.Info("using in-memory session store", zap.Duration("ttl", cfg.Session.TTL))
	return store, cancel, nil
}
