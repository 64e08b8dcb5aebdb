package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"resrv/internal/app"
	"resrv/internal/config"
	"resrv/internal/ratelimit"
	"resrv/internal/server"
	"resrv/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		DatabaseURL:     cfg.DatabaseURL,
		SessionStrategy: cfg.SessionStrategy,
		SessionTTL:      sessionTTL,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		JWTSecret:       cfg.JWTSecret,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		ExtractionModel: cfg.ExtractionModel,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var signupLimiter, loginLimiter *ratelimit.FixedWindowLimiter
	if cfg.SignupRateLimitPerMinute > 0 {
		signupLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "resrv:ratelimit:signup", cfg.SignupRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init signup rate limiter: %v", err)
		}
	}
	if cfg.LoginRateLimitPerMinute > 0 {
		loginLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "resrv:ratelimit:login", cfg.LoginRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init login rate limiter: %v", err)
		}
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		AllowedOrigins: cfg.AllowedOrigins,
		SignupLimiter:  signupLimiter,
		LoginLimiter:   loginLimiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
	slog.Info("server stopped")
}
