package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Clark-Hu/course-conditions/internal/config"
	httpserver "github.com/Clark-Hu/course-conditions/internal/http"
	"github.com/Clark-Hu/course-conditions/internal/logging"
	"github.com/Clark-Hu/course-conditions/internal/metrics"
	"github.com/Clark-Hu/course-conditions/internal/repository"
	"github.com/Clark-Hu/course-conditions/internal/seed"
	"github.com/Clark-Hu/course-conditions/internal/service"
	"github.com/Clark-Hu/course-conditions/internal/store"
)

func newServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate, seed and run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Loader{File: *configFile, RequireDB: true}.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			return serve(cmd.Context(), cfg, logger.Logger)
		},
	}
}

func newLogger(cfg config.Config) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*store.Store, error) {
	dbCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DBConnTimeoutSecs+5)*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return st, nil
}

// serve blocks until ctx is cancelled. Cancellation is a clean exit.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "course_conditions_db_pool_total_conns",
			Help: "Connections currently held by the pool",
		}, func() float64 { return float64(st.Stats().TotalConns()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "course_conditions_db_pool_acquired_conns",
			Help: "Connections currently checked out of the pool",
		}, func() float64 { return float64(st.Stats().AcquiredConns()) }),
	)
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	repo := repository.New(st)
	svc, err := service.New(repo, service.Options{
		Weights:         cfg.Weights(),
		BulkConcurrency: cfg.BulkConcurrency,
		Logger:          logger,
		Metrics:         m,
	})
	if err != nil {
		return err
	}

	dims, err := seed.Dimensions(cfg.DimensionsFile)
	if err != nil {
		return err
	}
	if err := svc.EnsureDimensions(ctx, dims); err != nil {
		return fmt.Errorf("seed rating dimensions: %w", err)
	}

	server := httpserver.New(cfg, st, repo, svc, m, logger)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
