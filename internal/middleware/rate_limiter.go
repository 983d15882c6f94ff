package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// idleTTL is how long an IP may stay silent before its bucket is dropped.
const idleTTL = 10 * time.Minute

type visitante struct {
	limiter *rate.Limiter
	visto   time.Time
}

// Limitador keeps one token bucket per client IP.
type Limitador struct {
	nombre string
	limit  rate.Limit
	burst  int

	mu         sync.Mutex
	visitantes map[string]*visitante
}

// NewLimitador allows n requests per window per IP, with bursts up to n.
func NewLimitador(nombre string, n int, window time.Duration) *Limitador {
	return &Limitador{
		nombre:     nombre,
		limit:      rate.Every(window / time.Duration(n)),
		burst:      n,
		visitantes: make(map[string]*visitante),
	}
}

func (l *Limitador) permitir(ip string, now time.Time) bool {
	l.mu.Lock()
	v, ok := l.visitantes[ip]
	if !ok {
		v = &visitante{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitantes[ip] = v
	}
	v.visto = now
	l.mu.Unlock()
	return v.limiter.AllowN(now, 1)
}

// Purgar drops buckets of IPs idle for longer than idleTTL.
func (l *Limitador) Purgar(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, v := range l.visitantes {
		if now.Sub(v.visto) > idleTTL {
			delete(l.visitantes, ip)
			n++
		}
	}
	return n
}

// Iniciar purges idle buckets until ctx is cancelled.
func (l *Limitador) Iniciar(ctx context.Context, cada time.Duration) {
	go func() {
		ticker := time.NewTicker(cada)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := l.Purgar(now); n > 0 {
					log.Debug().Str("limiter", l.nombre).Int("purged", n).Msg("rate limiter buckets purged")
				}
			}
		}
	}()
}

// Middleware answers 429 once the caller's bucket is empty.
func (l *Limitador) Middleware(mensaje string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.permitir(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(mensaje))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(l *Limitador) gin.HandlerFunc {
	return l.Middleware("Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter is the general API limiter.
func RateLimiter(l *Limitador) gin.HandlerFunc {
	return l.Middleware("Demasiadas solicitudes. Intente nuevamente en un momento.")
}
