package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userauth/internal/auth"
	"userauth/internal/config"
	"userauth/internal/db"
	httpx "userauth/internal/http"
	mw "userauth/internal/http/middleware"
	"userauth/internal/logger"
	"userauth/internal/metrics"
	"userauth/internal/password"
	"userauth/internal/user"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	hasher, err := password.New(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return err
	}

	store := user.NewStore(gdb, hasher)
	jwtSvc := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(store, hasher, jwtSvc)

	limiter := mw.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst, 5*time.Minute, log)
	defer limiter.Stop()

	r := httpx.NewRouter(cfg, httpx.Deps{
		Users:   store,
		Auth:    authSvc,
		JWT:     jwtSvc,
		Metrics: metrics.NewCollector(),
		Limiter: limiter,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ch:
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
