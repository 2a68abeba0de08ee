package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medware/hospital-overbook/internal/config"
	"github.com/medware/hospital-overbook/internal/db"
	"github.com/medware/hospital-overbook/internal/notify"
	"github.com/medware/hospital-overbook/internal/overbook"
	"github.com/medware/hospital-overbook/internal/redisclient"
	"github.com/medware/hospital-overbook/internal/schedule"
	"github.com/medware/hospital-overbook/pkg/logging"
)

// The sweep worker flips long-stale invited waitlist entries to expired.
// Claim-time expiry remains the authoritative check; this keeps the queue
// readable for operators and unblocks re-invites of patients stuck invited.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("sweep-worker starting up", "env", cfg.Env, "interval", cfg.SweepInterval.String())

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection error", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection error", "error", err)
		os.Exit(1)
	}
	defer func() { _ = rdb.Close() }()
	logger.Info("connected to Redis")

	svc := overbook.NewService(overbook.Deps{
		Suggestions: overbook.NewPgSuggestionStore(pgPool),
		Waitlist:    overbook.NewPgWaitlistStore(pgPool),
		Config:      overbook.NewPgConfigStore(pgPool),
		Schedules:   schedule.NewPgRepository(pgPool),
		Mailer:      notify.NewStubEmailSender(logger),
		Locker:      redisclient.NewRedisBucketLocker(rdb, cfg.LockTTL),
		Logger:      logger,
		FrontendURL: cfg.FrontendURL,
	})

	// Run once at startup
	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping sweep worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *overbook.Service, logger *logging.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	expired, err := svc.ExpireStaleInvites(runCtx)
	if err != nil {
		logger.Error("sweep run error", "error", err)
		return
	}
	logger.Info("sweep run complete", "expired", expired, "duration", time.Since(start).String())
}
