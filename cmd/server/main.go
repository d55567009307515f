package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"

	"accountpool/internal/accounts"
	"accountpool/internal/config"
	"accountpool/internal/credential"
	"accountpool/internal/gateway"
	"accountpool/internal/gateway/manager"
	"accountpool/internal/logger"
	"accountpool/internal/pkg/id"
	"accountpool/internal/scheduler"
	"accountpool/internal/service/httpform"
	"accountpool/internal/transport"
)

func main() {
	cfg := config.Get()

	logger.Init()
	logger.Banner(cfg.Port, cfg.ServiceName)

	factory, err := transport.NewFactory(transport.OptionsFromConfig(cfg))
	if err != nil {
		fatal("transport: %v", err)
	}
	svc, err := httpform.New(httpform.ConfigFrom(cfg))
	if err != nil {
		fatal("service: %v", err)
	}

	log := logger.Default()
	sched := scheduler.New(clock.WallClock, log)
	pool := credential.NewPool(cfg.ServiceName, svc, factory, sched,
		credential.WithLogger(log),
		credential.WithLocation(cfg.Location()),
		credential.WithLoginTimeout(cfg.LoginTimeout()),
		credential.WithInfoThreshold(cfg.InfoThreshold()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx, pool.RunJob)
	}()

	store := accounts.NewStore(cfg.AccountsFile)
	if err := store.Load(); err != nil {
		fatal("accounts: %v", err)
	}
	pool.SetAll(ctx, store.Configs())

	if scheduler.ValidCron(cfg.SessionCheckCron) {
		sched.Schedule(credential.Job{ID: id.JobID(), Kind: credential.JobCheckSessions, CronExpr: cfg.SessionCheckCron})
	} else {
		logger.Warn("SESSION_CHECK_CRON %q is not a 5-field cron expression, session sweep disabled", cfg.SessionCheckCron)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           gateway.NewRouter(manager.New(pool, store, log), cfg.APIKey),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("Server listening on %s", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_, _ = fmt.Fprintln(os.Stderr, err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	<-schedDone
	logger.Info("Server stopped")
}

func fatal(format string, args ...any) {
	logger.Error(format, args...)
	os.Exit(1)
}
