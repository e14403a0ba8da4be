package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"experiment-model-registry/internal/adapters/primary/http/handlers"
	"experiment-model-registry/internal/adapters/primary/http/middleware"
	"experiment-model-registry/internal/adapters/secondary/checkpoint"
	"experiment-model-registry/internal/adapters/secondary/memory"
	"experiment-model-registry/internal/adapters/secondary/postgres"
	"experiment-model-registry/internal/config"
	"experiment-model-registry/internal/core/ports/output"
	"experiment-model-registry/internal/core/services"
	"experiment-model-registry/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the registry HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (env SERVER_PORT)")
	_ = v.BindPFlag("SERVER_PORT", serveCmd.Flags().Lookup("port"))
}

type repositories struct {
	models   ports.RegisteredModelRepository
	versions ports.ModelVersionRepository
	ping     func(context.Context) error
	close    func()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	collector := metrics.NewCollector("model_registry")

	// Checkpoint Resolver (HTTP when a checkpoint store is configured)
	var resolver ports.CheckpointResolver
	if cfg.Checkpoint.Enabled {
		resolver = checkpoint.NewHTTPResolver(&cfg.Checkpoint)
		log.WithField("url", cfg.Checkpoint.URL).Info("checkpoint resolver initialized")
	} else {
		resolver = checkpoint.NewStaticResolver()
		log.Warn("checkpoint store disabled, accepting every checkpoint reference")
	}

	// Core Services (Application Layer)
	modelSvc := services.NewRegisteredModelService(repos.models, collector)
	versionSvc := services.NewModelVersionService(
		repos.versions, repos.models, resolver, collector, cfg.Registry.VersionAllocationAttempts,
	)
	querySvc := services.NewModelQueryService(repos.models)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(modelSvc, versionSvc, querySvc)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Identity(cfg.Registry.DefaultOwner),
		middleware.Logging(),
		middleware.Metrics(collector),
		gin.Recovery(),
	)

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	router.GET("/healthz", func(c *gin.Context) {
		if err := repos.ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Store.Backend == config.StoreBackendMemory {
		store := memory.NewStore()
		log.Info("using in-memory store")
		return &repositories{
			models:   store.Models(),
			versions: store.Versions(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}

	pool, err := openPool(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(pool, (*postgres.Migrator).Up); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &repositories{
		models:   postgres.NewRegisteredModelRepository(pool),
		versions: postgres.NewModelVersionRepository(pool),
		ping:     pool.Ping,
		close:    pool.Close,
	}, nil
}

func openPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	log.Info("database connection established")
	return pool, nil
}
