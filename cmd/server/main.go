package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/cstore-data/audit/internal/config"
	"github.com/cstore-data/audit/internal/core"
	"github.com/cstore-data/audit/internal/dataset"
	"github.com/cstore-data/audit/internal/logging"
	"github.com/cstore-data/audit/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_source", cfg.Data.Source,
		"target_cities", cfg.Data.TargetCities,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	src, cleanup, err := buildSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize data source", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	cache := dataset.NewCachedSource(src)

	var engineSrc core.Source = cache
	if cfg.Data.FilterStores && len(cfg.Data.TargetCities) > 0 {
		slog.Info("filtering source to target cities", "cities", cfg.Data.TargetCities)
		engineSrc = dataset.NewFilteredSource(cache, cfg.Data.TargetCities)
	}

	runner := core.NewRunner(engineSrc)
	runner.TargetCities = cfg.Data.TargetCities

	slog.Info("datasets registered", "count", core.DatasetCount())

	server := web.NewServer(runner, cache, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// buildSource constructs the configured table source. The returned cleanup
// closes whatever the source holds open.
func buildSource(ctx context.Context, cfg *config.Config) (core.Source, func(), error) {
	switch strings.ToLower(cfg.Data.Source) {
	case config.SourcePostgres:
		pool, err := connectPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return dataset.NewPostgresSource(pool), pool.Close, nil

	default:
		slog.Info("reading csv exports", "dir", cfg.Data.Dir)
		return dataset.NewCSVSource(cfg.Data.Dir, slog.Default()), func() {}, nil
	}
}

func connectPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
