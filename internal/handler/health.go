package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BreakerReporter exposes the SMTP circuit breaker state.
type BreakerReporter interface {
	Enabled() bool
	BreakerState() infra.CBState
}

// Health pings the database and Redis. The mailer state is informational and
// never turns the check red.
func Health(db *gorm.DB, rdb *redis.Client, mailer BreakerReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		smtpStatus := "disabled"
		if mailer != nil && mailer.Enabled() {
			smtpStatus = mailer.BreakerState().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"smtp":  smtpStatus,
		})
	}
}
