package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/api"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/config"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/filecache"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/metrics"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/middleware"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/monitoring"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/profiling"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/router"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/server"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/static"
)

// Memory leak check settings.
const (
	memoryGrowthThreshold = 2.0
	memoryCheckInterval   = 5 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// Start profiling (if enabled)
	profiling.StartPprofServer(log)
	profiler, err := profiling.StartPyroscope(cfg.Service.Name, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", logger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	return runServer(cfg, log)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// runServer creates all dependencies and serves until a shutdown signal.
func runServer(cfg *config.Config, log logger.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := filecache.New(filecache.Config{
		MaxBytes:     cfg.Static.CacheMaxBytes,
		MaxFileBytes: cfg.Static.CacheMaxFileBytes,
	})

	m := metrics.New()
	if err := m.RegisterCache(cache); err != nil {
		log.Error("Failed to register cache metrics", logger.Error(err))
		return 1
	}

	staticHandler, err := static.New(static.Config{
		Root:           cfg.Static.Root,
		CacheThreshold: cfg.Static.CacheThreshold,
		Cache:          cache,
		Logger:         log,
		Observer:       m,
	})
	if err != nil {
		log.Error("Failed to create static handler", logger.Error(err))
		return 1
	}

	handlerDeps := api.Deps{
		Static:  staticHandler,
		Logger:  log,
		Started: time.Now(),
	}
	if cfg.Metrics.Enabled {
		handlerDeps.Metrics = m
	}

	rt := router.New()
	api.NewHandlers(handlerDeps).Register(rt)

	// Recovery sits inside the observers so they see the final status.
	chain := middleware.NewChain(
		m.Middleware(),
		middleware.Logging(log),
		middleware.Recovery(log),
		middleware.BodyParser(),
	)

	srv := server.New(server.Config{
		Address:         cfg.Server.Address(),
		Name:            cfg.Service.Name,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxMessageSize:  cfg.Server.MaxMessageSize,
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		KeepAlive: network.KeepAliveConfig{
			Enabled:     cfg.KeepAlive.IsEnabled(),
			Timeout:     cfg.KeepAlive.Timeout,
			MaxRequests: cfg.KeepAlive.MaxRequests,
		},
	}, rt, log, server.WithChain(chain), server.WithObserver(m))

	startMemoryMonitor(ctx, log)

	log.Info("Static HTTP server starting",
		logger.String("address", cfg.Server.Address()),
		logger.String("root", staticHandler.Root()),
		logger.Bool("keep_alive", cfg.KeepAlive.IsEnabled()),
		logger.Bool("metrics", cfg.Metrics.Enabled),
	)

	if err = server.RunWithGracefulShutdown(ctx, srv, log); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Static HTTP server exited cleanly")
	return 0
}

func startMemoryMonitor(ctx context.Context, log logger.Logger) {
	monitor := monitoring.NewMemoryMonitor(memoryGrowthThreshold, memoryCheckInterval)
	monitor.EstablishBaseline()
	monitor.SetWarningCallback(func(report string) {
		log.Warn("Memory growth detected", logger.String("report", report))
	})
	go monitor.Run(ctx)
}
