package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zapshift/config"
	"zapshift/internal/database"
	"zapshift/internal/logger"
	"zapshift/internal/router"
	"zapshift/internal/ws"
	"zapshift/pkg/payment"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.NewForEnvironment(cfg.Server.Env)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config", zap.Error(err))
	}

	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("database close", zap.Error(err))
		}
	}()
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	var provider payment.Provider
	if cfg.Stripe.SecretKey != "" {
		provider = payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.Timeout, log)
	} else {
		log.Warn("SPRITE_SECRET not set, using in-memory checkout provider")
		provider = payment.NewStubProvider()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := router.Setup(ctx, cfg, db, provider, ws.NewHub(), log)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
