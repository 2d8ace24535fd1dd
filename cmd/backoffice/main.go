package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/zebtan/courier-backoffice/internal/api"
	"github.com/zebtan/courier-backoffice/internal/core/service"
	"github.com/zebtan/courier-backoffice/internal/infrastructure/courier/leopard"
	mongodb "github.com/zebtan/courier-backoffice/internal/infrastructure/db/mongo"
	redisdb "github.com/zebtan/courier-backoffice/internal/infrastructure/db/redis"
	"github.com/zebtan/courier-backoffice/internal/infrastructure/mail"
	"github.com/zebtan/courier-backoffice/internal/infrastructure/queue"
	"github.com/zebtan/courier-backoffice/internal/pkg/config"
	"github.com/zebtan/courier-backoffice/internal/scheduler"
	"github.com/zebtan/courier-backoffice/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	store := mongodb.NewShipmentStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Courier provider ---
	provider := leopard.New(leopard.Config{
		Endpoint:    cfg.Leopard.Endpoint,
		APIKey:      cfg.Leopard.APIKey,
		APIPassword: cfg.Leopard.APIPassword,
		Timeout:     cfg.Leopard.Timeout,
	}, log)

	// --- Notifications ---
	mailer := mail.NewMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	}, log)
	guard := redisdb.NewNotifyGuard(rdb)
	dispatcher := queue.NewDispatcher(cfg.Reconcile.Workers, mailer, guard, log)
	dispatcher.Start(ctx)

	// --- Reconciliation ---
	cities := service.NewCityCache(provider, cfg.Reconcile.CityCacheTTL, log)
	engine := service.NewReconciliationEngine(store, provider, cities, dispatcher, log)
	sched := scheduler.New(engine, cfg.Reconcile.Interval, log)
	go sched.Run(ctx)

	// --- HTTP surface ---
	e := api.NewRouter(api.Deps{
		Mongo:     db,
		Redis:     rdb,
		Applier:   engine,
		Trigger:   sched,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Dur("interval", cfg.Reconcile.Interval).
		Msg("courier back office started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
