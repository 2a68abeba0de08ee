package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medware/hospital-overbook/internal/api"
	"github.com/medware/hospital-overbook/internal/config"
	"github.com/medware/hospital-overbook/internal/db"
	"github.com/medware/hospital-overbook/internal/metrics"
	"github.com/medware/hospital-overbook/internal/notify"
	"github.com/medware/hospital-overbook/internal/overbook"
	"github.com/medware/hospital-overbook/internal/realtime"
	"github.com/medware/hospital-overbook/internal/redisclient"
	"github.com/medware/hospital-overbook/internal/schedule"
	"github.com/medware/hospital-overbook/pkg/logging"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("api-server starting up", "env", cfg.Env, "http_port", cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection error", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection error", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", "error", err)
		}
	}()
	logger.Info("connected to Redis")

	// Collaborators
	hub := realtime.NewHub(logger)
	locker := redisclient.NewRedisBucketLocker(rdb, cfg.LockTTL)
	m := metrics.NewOverbookMetrics(nil)

	var mailer notify.EmailSender = notify.NewStubEmailSender(logger)
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.MailFrom,
		FromName:  cfg.MailFromName,
	}, logger); sg != nil {
		mailer = sg
	}

	// Services
	scheduleRepo := schedule.NewPgRepository(pgPool)

	overbookSvc := overbook.NewService(overbook.Deps{
		Suggestions: overbook.NewPgSuggestionStore(pgPool),
		Waitlist:    overbook.NewPgWaitlistStore(pgPool),
		Config:      overbook.NewPgConfigStore(pgPool),
		Schedules:   scheduleRepo,
		Mailer:      mailer,
		Events:      hub,
		Locker:      locker,
		Metrics:     m,
		Logger:      logger,
		FrontendURL: cfg.FrontendURL,
	})

	scheduleSvc := schedule.NewService(scheduleRepo, hub, overbookSvc, logger)

	router := api.NewRouter(api.RouterConfig{
		Overbook:  overbookSvc,
		Schedules: scheduleSvc,
		Hub:       hub,
		PgPool:    pgPool,
		Redis:     rdb,
		Logger:    logger,
		Env:       cfg.Env,
		Version:   version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	logger.Info("api-server stopped")
}
