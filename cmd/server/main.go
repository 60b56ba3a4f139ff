package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/yhkim-dev/stockflow/internal/catalog"
	"github.com/yhkim-dev/stockflow/internal/config"
	"github.com/yhkim-dev/stockflow/internal/core"
	"github.com/yhkim-dev/stockflow/internal/logging"
	"github.com/yhkim-dev/stockflow/internal/store"
	"github.com/yhkim-dev/stockflow/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"preview_max_entries", cfg.Import.PreviewMaxEntries,
		"job_row_interval", cfg.Import.RowInterval,
	)

	ctx := context.Background()

	// Pick the inventory store: PostgreSQL when configured, in-memory
	// otherwise.
	var st store.Store = store.NewMemory()
	if cfg.Database.URL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		st = store.NewPostgres(pool)
		slog.Info("connected to database")
	} else {
		slog.Info("no DATABASE_URL set, using in-memory store")
	}

	cat := catalog.Default()
	slog.Info("catalog seeded",
		"warehouses", len(cat.Warehouses()),
		"partners", len(cat.Partners()),
	)

	service := core.NewService(st, cat, core.Options{
		PreviewSampleErrors: cfg.Import.PreviewSampleErrors,
		PreviewMaxEntries:   cfg.Import.PreviewMaxEntries,
		PreviewMaxAge:       cfg.Import.PreviewMaxAge,
		StartDelay:          cfg.Import.StartDelay,
		RowInterval:         cfg.Import.RowInterval,
		MaxJobs:             cfg.Import.MaxJobs,
		DefaultLanguage:     cfg.Import.DefaultLanguage,
	})

	server := web.NewServer(service, cfg)

	// The job queue worker runs until shutdown.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.Run(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
