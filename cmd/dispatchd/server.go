package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/dispatchd/api/handlers"
	"github.com/BaSui01/dispatchd/config"
	"github.com/BaSui01/dispatchd/internal/metrics"
	"github.com/BaSui01/dispatchd/internal/server"
	"github.com/BaSui01/dispatchd/internal/snapshot"
	"github.com/BaSui01/dispatchd/internal/telemetry"
	"github.com/BaSui01/dispatchd/registry"
)

// Server wires the registry, handlers, and the two HTTP listeners.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	registry      *registry.InMemoryRegistry
	snapshotStore *snapshot.Store
	telemetry     *telemetry.Providers

	httpManager    *server.Manager
	metricsManager *server.Manager

	healthHandler    *handlers.HealthHandler
	inventoryHandler *handlers.InventoryHandler
	metricsCollector *metrics.Collector

	rateLimiterCancel context.CancelFunc
}

// NewServer creates a server from loaded configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// Start initializes every component and begins serving.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector(s.cfg.Metrics.Namespace, s.logger)

	providers, err := telemetry.Init(s.cfg.Telemetry, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	s.telemetry = providers

	if err := s.initRegistry(); err != nil {
		return fmt.Errorf("failed to init registry: %w", err)
	}

	if err := s.initSnapshotStore(); err != nil {
		// The mirror is advisory; the in-memory registry is the source
		// of truth.
		s.logger.Warn("snapshot store unavailable, inventory mirroring disabled", zap.Error(err))
	}

	s.initHandlers()

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.String("http_addr", s.httpManager.Addr()),
		zap.String("metrics_addr", s.metricsManager.Addr()),
		zap.Int("seed_extensions", s.registry.Len()),
	)

	return nil
}

// initRegistry creates the registry and applies seed extensions from
// the configuration.
func (s *Server) initRegistry() error {
	seed, err := s.cfg.SeedExtensions()
	if err != nil {
		return fmt.Errorf("invalid seed extension: %w", err)
	}

	reg, err := registry.NewSeededRegistry(s.logger, seed)
	if err != nil {
		return fmt.Errorf("seed registration failed: %w", err)
	}
	s.registry = reg

	s.metricsCollector.SetInventorySize(reg.Len(), reg.Table().Len())
	return nil
}

// initSnapshotStore connects the Redis mirror when enabled and restores
// a previously mirrored inventory into an empty registry.
func (s *Server) initSnapshotStore() error {
	if !s.cfg.Snapshot.Enabled {
		return nil
	}

	store, err := snapshot.NewStore(snapshot.Config{
		Enabled:     s.cfg.Snapshot.Enabled,
		Addr:        s.cfg.Snapshot.Addr,
		Password:    s.cfg.Snapshot.Password,
		DB:          s.cfg.Snapshot.DB,
		Key:         s.cfg.Snapshot.Key,
		DialTimeout: s.cfg.Snapshot.DialTimeout,
	}, s.logger)
	if err != nil {
		return err
	}
	s.snapshotStore = store

	// Seeded inventories win over mirrored ones.
	if s.registry.Len() > 0 {
		return nil
	}

	snap, err := store.Load(context.Background())
	if err != nil {
		s.logger.Warn("failed to load inventory snapshot", zap.Error(err))
		return nil
	}
	if snap == nil {
		return nil
	}

	for _, ext := range snap.Extensions {
		if err := s.registry.RegisterExtension(ext); err != nil {
			s.logger.Warn("skipping mirrored extension",
				zap.String("name", ext.Name),
				zap.Error(err))
		}
	}
	s.metricsCollector.SetInventorySize(s.registry.Len(), s.registry.Table().Len())
	s.logger.Info("inventory restored from snapshot",
		zap.String("revision", snap.Revision),
		zap.Int("extensions", s.registry.Len()),
	)
	return nil
}

func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewConsistencyHealthCheck(s.registry))
	if s.snapshotStore != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingHealthCheck("snapshot_store", s.snapshotStore.Ping))
	}

	var mirror handlers.Mirror
	if s.snapshotStore != nil {
		mirror = s.snapshotStore
	}
	s.inventoryHandler = handlers.NewInventoryHandler(s.registry, s.metricsCollector, mirror, s.logger)
}

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("/api/v1/extensions", s.inventoryHandler.HandleExtensions)
	mux.HandleFunc("/api/v1/extensions/", s.inventoryHandler.HandleExtensionByName)
	mux.HandleFunc("/api/v1/resolve", s.inventoryHandler.HandleResolve)
	mux.HandleFunc("/api/v1/verify", s.inventoryHandler.HandleVerify)
	mux.HandleFunc("/api/v1/collisions", s.inventoryHandler.HandleCollisions)

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
	}
	if s.cfg.Telemetry.Enabled {
		middlewares = append(middlewares, OTelTracing())
	}
	if s.cfg.Server.RateLimitRPS > 0 {
		rateLimiterCtx, cancel := context.WithCancel(context.Background())
		s.rateLimiterCancel = cancel
		middlewares = append(middlewares,
			RateLimiter(rateLimiterCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger))
	}
	handler := Chain(mux, middlewares...)

	s.httpManager = server.NewManager(handler, server.Config{
		Addr:            s.cfg.Server.Addr,
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	return s.httpManager.Start()
}

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s.metricsManager = server.NewManager(mux, server.Config{
		Addr:            s.cfg.Metrics.Addr,
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	return s.metricsManager.Start()
}

// WaitForShutdown blocks until a termination signal or a listener
// failure, then shuts everything down.
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		s.logger.Info("received signal", zap.String("signal", sig.String()))
	case err := <-s.httpManager.Errors():
		s.logger.Error("HTTP server failed", zap.Error(err))
	case err := <-s.metricsManager.Errors():
		s.logger.Error("metrics server failed", zap.Error(err))
	}

	s.Shutdown()
}

// Shutdown drains both listeners in parallel and closes the remaining
// components.
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	var g errgroup.Group
	if s.httpManager != nil {
		g.Go(func() error { return s.httpManager.Shutdown(ctx) })
	}
	if s.metricsManager != nil {
		g.Go(func() error { return s.metricsManager.Shutdown(ctx) })
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("server shutdown error", zap.Error(err))
	}

	if s.snapshotStore != nil {
		if err := s.snapshotStore.Close(); err != nil {
			s.logger.Error("snapshot store close error", zap.Error(err))
		}
	}

	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			s.logger.Error("telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
