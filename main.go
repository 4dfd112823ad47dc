package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/cache"
	"github.com/datavisiting/fdp-explorer/pkg/config"
	"github.com/datavisiting/fdp-explorer/pkg/fdp"
	"github.com/datavisiting/fdp-explorer/pkg/handlers"
	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/mcp"
	"github.com/datavisiting/fdp-explorer/pkg/mcp/tools"
	"github.com/datavisiting/fdp-explorer/pkg/metrics"
	"github.com/datavisiting/fdp-explorer/pkg/middleware"
	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/seeds"
	"github.com/datavisiting/fdp-explorer/pkg/services"
	"github.com/datavisiting/fdp-explorer/pkg/session"
	"github.com/datavisiting/fdp-explorer/pkg/workerpool"
)

// Version is set at build time via ldflags
var Version = "dev"

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("fdp_timeout", cfg.FDP.Timeout()),
		zap.Bool("fdp_verify_ssl", cfg.FDP.VerifySSL),
		zap.Int("fdp_concurrency", cfg.FDP.Concurrency),
		zap.Bool("redis", cfg.Redis.Enabled()),
		zap.Bool("mcp", cfg.MCP.Enabled))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	client := fdp.NewClient(fdp.Options{
		Timeout:       cfg.FDP.Timeout(),
		SkipTLSVerify: !cfg.FDP.VerifySSL,
		MaxRetries:    cfg.FDP.MaxRetries,
		RateLimit:     cfg.FDP.RateLimit,
		Observer:      m,
	}, logger)
	pool := workerpool.New(workerpool.Config{MaxConcurrent: cfg.FDP.Concurrency}, logger)

	// Dataset listing cache
	var (
		datasetCache cache.DatasetCache
		cachePinger  handlers.Pinger
	)
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Cache.TTL(),
		})
		if err != nil {
			return err
		}
		datasetCache, cachePinger = redisCache, redisCache
		logger.Info("Using Redis dataset cache", zap.String("addr", cfg.Redis.Addr()))
	} else {
		datasetCache = cache.NewMemoryCache(cfg.Cache.TTL())
	}
	defer func() { _ = datasetCache.Close() }()

	datasetService := services.NewDatasetService(client, pool, logger)
	listings := services.NewListingService(datasetService, datasetCache, m, logger)
	composer := services.NewEmailComposer()

	// Seed FDPs every new session starts with
	seedList, err := seeds.Load(cfg.FDP.SeedsFile)
	if err != nil {
		return err
	}
	seedFDPs := services.ResolveSeeds(ctx, client, seedList, logger)
	initial := func() session.State {
		return session.State{FDPs: append([]models.FairDataPoint{}, seedFDPs...)}
	}

	sessions, err := session.NewManager(session.Options{
		Secret:    cfg.Session.Secret,
		StorePath: cfg.Session.StorePath,
		MaxAge:    cfg.Session.MaxAgeSeconds,
		Secure:    cfg.TLSCertPath != "" || !cfg.IsLocal(),
	}, initial)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, cachePinger, logger).RegisterRoutes(mux)
	handlers.NewFDPHandler(sessions, client, listings, pool, logger).RegisterRoutes(mux)
	handlers.NewDatasetHandler(sessions, client, listings, logger).RegisterRoutes(mux)
	handlers.NewBasketHandler(sessions, listings, logger).RegisterRoutes(mux)
	handlers.NewRequestHandler(sessions, composer, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", m.Handler())

	if cfg.MCP.Enabled {
		seedURIs := make([]string, len(seedFDPs))
		for i, f := range seedFDPs {
			seedURIs[i] = f.URI
		}

		mcpServer := mcp.NewServer("fdp-explorer", cfg.Version, logger)
		tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version, seedURIs)
		tools.RegisterDatasetTools(mcpServer.MCP(), &tools.DatasetToolDeps{
			Listings: listings,
			Client:   client,
			FDPURIs:  seedURIs,
			Logger:   logger,
		})
		handlers.NewMCPHandler(mcpServer, logger).RegisterRoutes(mux)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.RequestID(middleware.RequestLogger(logger)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting fdp-explorer",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.Version),
			zap.Bool("tls", cfg.TLSCertPath != ""))

		var err error
		if cfg.TLSCertPath != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
