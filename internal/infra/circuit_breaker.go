package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CircuitBreaker guards the mail relay used for settlement notifications.
// After FailureThreshold consecutive send failures it opens and every email
// job fails fast with ErrCircuitOpen, so the pool retries it later instead of
// tying a worker to a dead relay. Once OpenTimeout has passed a single send is
// let through as a probe. Its result closes or reopens the breaker; other
// workers keep getting ErrCircuitOpen while the probe is in flight.
type CircuitBreaker struct {
	mu        sync.Mutex
	now       func() time.Time
	name      string
	state     CBState
	fallos    int
	abiertoEn time.Time
	sondeando bool
	umbral    int
	espera    time.Duration
}

// CBState is reported by /health as a string.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	OpenTimeout      time.Duration
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 2 * time.Minute
	}
	return &CircuitBreaker{
		now:    time.Now,
		name:   cfg.Name,
		umbral: cfg.FailureThreshold,
		espera: cfg.OpenTimeout,
	}
}

// State moves open to half-open once OpenTimeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refrescar()
	return cb.state
}

// Execute runs fn unless the breaker is open or a half-open probe is already running.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	cb.refrescar()
	switch {
	case cb.state == CBOpen:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case cb.state == CBHalfOpen && cb.sondeando:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case cb.state == CBHalfOpen:
		cb.sondeando = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.sondeando = false
	if err != nil {
		cb.fallo()
		return err
	}
	if cb.state != CBClosed {
		cb.cambiar(CBClosed)
	}
	cb.fallos = 0
	return nil
}

// Caller holds mu.
func (cb *CircuitBreaker) refrescar() {
	if cb.state == CBOpen && cb.now().Sub(cb.abiertoEn) >= cb.espera {
		cb.cambiar(CBHalfOpen)
	}
}

// Caller holds mu.
func (cb *CircuitBreaker) fallo() {
	cb.fallos++
	if cb.state == CBHalfOpen || cb.fallos >= cb.umbral {
		cb.abiertoEn = cb.now()
		cb.fallos = 0
		cb.cambiar(CBOpen)
	}
}

func (cb *CircuitBreaker) cambiar(s CBState) {
	if cb.state == s {
		return
	}
	ev := log.Info()
	if s == CBOpen {
		ev = log.Warn().Dur("retry_in", cb.espera)
	}
	ev.Str("breaker", cb.name).Str("from", cb.state.String()).Str("to", s.String()).Msg("circuit breaker state change")
	cb.state = s
}
