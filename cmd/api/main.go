package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/studio-atelier/site-backend/config"
	"github.com/studio-atelier/site-backend/internal/bootstrap"
	"github.com/studio-atelier/site-backend/internal/logging"
	"github.com/studio-atelier/site-backend/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(cfg.App.ServiceName, cfg.App.Environment, cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.App.Environment)

	if cfg.Server.AdminAPIKey == "" {
		log.Warn().Msg("ADMIN_API_KEY is empty, admin routes are open")
	}

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, &cfg.Database, cfg.Database.MigrateOnStart)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	rdb := bootstrap.OpenRedis(ctx, &cfg.Redis)
	defer rdb.Close()

	services := bootstrap.NewServices(cfg, db, rdb)

	var sched *scheduler.Scheduler
	if w := services.Warmer(); w != nil && cfg.Cache.WarmSchedule != "" {
		sched, err = scheduler.NewScheduler(cfg.Cache.WarmSchedule, w)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create cache warm scheduler")
		}
		sched.Start()
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AdminAPIKey:    cfg.Server.AdminAPIKey,
		TrustedProxies: cfg.Server.TrustedProxies,
		ContactPerMin:  cfg.Contact.RatePerMinute,
		DB:             db,
		Redis:          rdb,
		Services:       services,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Environment).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if sched != nil {
		<-sched.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
