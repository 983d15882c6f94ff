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

	"github.com/car1087/dinoplay-2-0/internal/config"
	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/infra"
	"github.com/car1087/dinoplay-2-0/internal/repository"
	"github.com/car1087/dinoplay-2-0/internal/router"
	"github.com/car1087/dinoplay-2-0/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	configurarLogger(cfg)

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Fatal().Msg("JWT_SECRET is required in production")
		}
		log.Warn().Msg("JWT_SECRET empty, using an insecure development secret")
		cfg.JWTSecret = "dinoplay-dev-secret-change-me-000000"
	}

	reloj, err := horalocal.Nuevo(cfg.VenueTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("zona", cfg.VenueTimezone).Msg("invalid venue timezone")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open database")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Async jobs: receipt PDF + owner notification after each settlement.
	// Processors are wired here so the pool sees every infra dependency.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	liquidacionRepo := repository.NewLiquidacionRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)

	pool := worker.NewPool(rdb, map[string]worker.Processor{
		worker.QueueLiquidacion: worker.NewNotificacionWorker(liquidacionRepo, usuarioRepo, dispatcher, mailer, reloj, cfg.PDFStoragePath),
		worker.QueueEmail:       worker.NewEmailWorker(mailer),
	})
	pool.Start(ctx, cfg.WorkerPoolSize)

	worker.StartCleanupCron(ctx, worker.CleanupCronConfig{
		Turnos: repository.NewTurnoStore(rdb),
		Reloj:  reloj,
		RDB:    rdb,
	})

	r := router.New(ctx, cfg, db, rdb, reloj, mailer)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Int("port", cfg.Port).
			Str("env", cfg.Env).
			Str("db", cfg.DBDriver).
			Str("zona", cfg.VenueTimezone).
			Msg("Dino Play backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Stop workers after the last request so no enqueue is lost mid-flight.
	cancel()
	pool.Wait()

	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

// configurarLogger: pretty console output in development, JSON in production.
func configurarLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
