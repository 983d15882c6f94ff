package worker

// cleanup_cron.go
// Background goroutine that drops shift state of past venue dates from Redis
// and reports non-empty dead letter queues.

import (
	"context"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cleanupTickInterval = 30 * time.Minute

// CleanupCronConfig holds all dependencies for the cleanup goroutine.
type CleanupCronConfig struct {
	Turnos    repository.TurnoStore
	Reloj     *horalocal.Reloj
	RDB       *redis.Client
	Intervalo time.Duration
}

// StartCleanupCron runs one pass immediately and then every Intervalo until ctx is cancelled.
func StartCleanupCron(ctx context.Context, cfg CleanupCronConfig) {
	if cfg.Intervalo <= 0 {
		cfg.Intervalo = cleanupTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().Msg("cleanup_cron: started")
		runCleanup(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("cleanup_cron: shutting down")
				return
			case <-ticker.C:
				runCleanup(ctx, cfg)
			}
		}
	}()
}

func runCleanup(ctx context.Context, cfg CleanupCronConfig) {
	hoy := cfg.Reloj.Hoy()
	n, err := cfg.Turnos.PurgarAnteriores(ctx, hoy)
	if err != nil {
		log.Error().Err(err).Msg("cleanup_cron: failed to purge stale shifts")
	} else if n > 0 {
		log.Info().Int("keys", n).Str("hoy", hoy).Msg("cleanup_cron: stale shifts purged")
	}

	for _, q := range []string{QueueLiquidacion, QueueEmail} {
		size, err := DLQLength(ctx, cfg.RDB, q)
		if err != nil {
			log.Warn().Err(err).Str("queue", q).Msg("cleanup_cron: dlq length failed")
			continue
		}
		if size == 0 {
			continue
		}
		ev := log.Warn().Int64("entries", size).Str("queue", q)
		if ultima, err := UltimaDLQ(ctx, cfg.RDB, q); err == nil && ultima != nil {
			ev = ev.Str("last_reason", ultima.Reason).Time("last_failed_at", ultima.FailedAt)
			if ultima.LiquidacionID != "" {
				ev = ev.Str("liquidacion_id", ultima.LiquidacionID)
			}
		}
		ev.Msg("cleanup_cron: dead letter queue not empty")
	}
}
