package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueLiquidacion = "jobs:liquidacion"
	QueueEmail       = "jobs:email"

	JobLiquidacion = "liquidacion"
	JobEmail       = "email"

	// MaxJobAttempts is the number of deliveries before a job goes to the DLQ.
	MaxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Processor handles the payload of one job type. A returned error re-queues
// the job until MaxJobAttempts is reached.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarLiquidacion schedules the receipt and notification of a saved settlement.
func (d *Dispatcher) EncolarLiquidacion(ctx context.Context, liquidacionID uuid.UUID) error {
	return d.enqueue(ctx, QueueLiquidacion, Job{Type: JobLiquidacion}, LiquidacionJobPayload{LiquidacionID: liquidacionID.String()})
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, Job{Type: JobEmail}, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue string, job Job, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job.Payload = data
	return d.push(ctx, queue, job)
}

func (d *Dispatcher) push(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", queue, err)
	}
	return nil
}

// Pool is a set of goroutines consuming every queue that has a Processor.
type Pool struct {
	rdb        *redis.Client
	dispatcher *Dispatcher
	processors map[string]Processor
	queues     []string
	popTimeout time.Duration
	wg         sync.WaitGroup
}

// NewPool maps queue name to its processor.
func NewPool(rdb *redis.Client, processors map[string]Processor) *Pool {
	p := &Pool{
		rdb:        rdb,
		dispatcher: NewDispatcher(rdb),
		processors: processors,
		popTimeout: 5 * time.Second,
	}
	for q := range processors {
		p.queues = append(p.queues, q)
	}
	return p
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker returned after ctx was cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			result, err := p.rdb.BRPop(ctx, p.popTimeout, p.queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		p.descartar(ctx, queue, "desconocido", []byte(raw), "payload invalido: "+err.Error(), 0)
		return
	}

	proc, ok := p.processors[queue]
	if !ok {
		log.Error().Str("queue", queue).Msg("no processor for queue")
		return
	}

	job.Attempts++
	err := proc.Process(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("type", job.Type).Str("queue", queue).Msg("job processed")
		return
	}

	if errors.Is(err, ErrPermanente) || job.Attempts >= MaxJobAttempts {
		p.descartar(ctx, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, re-queued")
	if err := p.dispatcher.push(ctx, queue, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to re-queue job")
	}
}

// ErrPermanente marks failures that retrying cannot fix.
var ErrPermanente = errors.New("error permanente")

func (p *Pool) descartar(ctx context.Context, queue, jobType string, payload []byte, reason string, attempts int) {
	if err := SendToDLQ(ctx, p.rdb, queue, jobType, payload, reason, attempts); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", jobType).Str("payload", string(payload)).Msg("job lost, dlq push failed")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("job moved to dead letter queue")
}
