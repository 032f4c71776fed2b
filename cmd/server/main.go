package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/LeadTracker/internal/cache"
	"github.com/JonMunkholm/LeadTracker/internal/config"
	"github.com/JonMunkholm/LeadTracker/internal/core"
	"github.com/JonMunkholm/LeadTracker/internal/events"
	"github.com/JonMunkholm/LeadTracker/internal/logging"
	"github.com/JonMunkholm/LeadTracker/internal/storage/memory"
	"github.com/JonMunkholm/LeadTracker/internal/storage/postgres"
	"github.com/JonMunkholm/LeadTracker/internal/storage/sqlite"
	"github.com/JonMunkholm/LeadTracker/internal/web"
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
		"db_driver", cfg.Database.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"cache_enabled", cfg.Cache.Enabled(),
		"events_enabled", cfg.Events.Enabled(),
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	var views core.ViewCache = core.NewMemoryViewCache()
	var viewCache *cache.RedisViewCache
	if cfg.Cache.Enabled() {
		viewCache = cache.New(cache.NewClient(cacheOptions(&cfg.Cache)), cacheOptions(&cfg.Cache))
		if err := viewCache.Ping(ctx); err != nil {
			slog.Error("failed to reach redis", "addr", cfg.Cache.Addr, "error", err)
			os.Exit(1)
		}
		views = viewCache
		slog.Info("view cache connected", "addr", cfg.Cache.Addr)
	}

	opts := []core.Option{core.WithViewCache(views)}

	var publisher *events.Publisher
	if cfg.Events.Enabled() {
		publisher, err = events.Dial(cfg.Events.URL, cfg.Events.Exchange)
		if err != nil {
			slog.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		opts = append(opts, core.WithNotifier(publisher))
		slog.Info("import events enabled", "exchange", cfg.Events.Exchange)
	}

	service := core.NewService(store, core.ServiceConfig{
		DefaultCompanyName:   cfg.Import.DefaultCompanyName,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		MaxWaitTime:          cfg.Import.MaxWaitTime,
		ImportTimeout:        cfg.Import.Timeout,
		PreviewSampleSize:    cfg.Import.PreviewSampleSize,
	}, opts...)

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for active imports to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if publisher != nil {
			if err := publisher.Close(); err != nil {
				slog.Warn("close publisher", "error", err)
			}
		}
		if viewCache != nil {
			if err := viewCache.Close(); err != nil {
				slog.Warn("close view cache", "error", err)
			}
		}
		if err := store.Close(); err != nil {
			slog.Warn("close storage", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
}

// openStore connects the configured storage driver.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (core.LeadStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, postgres.PoolConfig{
			URL:             cfg.URL,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		// Log which database we connected to
		if u, err := url.Parse(cfg.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
		return store, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, sqlite.Options{LogSQL: cfg.LogSQL})
		if err != nil {
			return nil, err
		}
		slog.Info("opened sqlite database", "path", cfg.SQLitePath)
		return store, nil

	case config.DriverMemory:
		slog.Warn("using in-memory storage; leads are lost on restart")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

func cacheOptions(cfg *config.CacheConfig) cache.Options {
	return cache.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Prefix:   cfg.Prefix,
		TTL:      cfg.TTL,
	}
}
