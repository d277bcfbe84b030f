package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/config"
	"github.com/hamed0406/statuspage/internal/history"
	"github.com/hamed0406/statuspage/internal/httpapi"
	"github.com/hamed0406/statuspage/internal/logging"
	"github.com/hamed0406/statuspage/internal/metrics"
	"github.com/hamed0406/statuspage/internal/probe"
	"github.com/hamed0406/statuspage/internal/repo"
	"github.com/hamed0406/statuspage/internal/repo/memory"
	pg "github.com/hamed0406/statuspage/internal/repo/postgres"
	"github.com/hamed0406/statuspage/internal/scheduler"
	"github.com/hamed0406/statuspage/internal/status"
	"github.com/hamed0406/statuspage/internal/targets"
)

func main() {
	cfgPath := flag.String("config", "", "path to config.yaml (optional; env overrides)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	m := metrics.New()

	// store
	var (
		store  repo.CheckStore
		pinger repo.Pinger
	)
	if cfg.UsesPostgres() {
		if cfg.DB.Migrate {
			if err := pg.Migrate(ctx, cfg.DB.DSN); err != nil {
				logger.Fatal("db_migrate", zap.Error(err))
			}
		}
		db, err := pg.New(ctx, cfg.DB, logger)
		if err != nil {
			logger.Fatal("db_connect", zap.Error(err))
		}
		defer db.Close()
		store, pinger = db, db
		logger.Info("store_postgres")
	} else {
		mem := memory.New()
		store, pinger = mem, mem
		logger.Warn("store_memory", zap.String("hint", "set DB_DSN to persist checks"))
	}

	// targets: initial load is synchronous so the first pass sees them
	reg := targets.NewRegistry(nil)
	reloader := scheduler.NewReloader(logger, reg, m, cfg.ServicesFile)
	if err := reloader.Reload(ctx); err != nil {
		logger.Error("targets_initial_load_failed", zap.String("path", cfg.ServicesFile), zap.Error(err))
	}

	checker := probe.NewHTTPChecker(cfg.Probe.Timeout, cfg.Probe.UserAgent)
	rechecker := scheduler.NewRechecker(logger, reg, store, checker, m, cfg.Probe.Concurrency)
	rechecker.DNSDiagnostics = cfg.Probe.DNSDiagnostics

	sched, err := scheduler.New(logger, rechecker, reloader, cfg.Schedule.Check, cfg.Schedule.Reload)
	if err != nil {
		logger.Fatal("scheduler_init", zap.Error(err))
	}
	sched.Start(ctx)

	// http
	api := httpapi.NewServer(logger, reg, status.NewResolver(store), history.NewService(store), pinger, m)
	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: api.Router(httpapi.Options{
			StaticDir:      cfg.HTTP.StaticDir,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			RateLimitRPM:   cfg.HTTP.RateLimitRPM,
			RateLimitBurst: cfg.HTTP.RateLimitBurst,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.HTTP.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server", zap.Error(err))
		}
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	select {
	case <-sched.Stop().Done():
	case <-shCtx.Done():
		logger.Warn("check_pass_abandoned")
	}
	logger.Info("bye")
}
