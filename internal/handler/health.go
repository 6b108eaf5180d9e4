package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/infra"

	"github.com/gin-gonic/gin"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// Redis and the extraction breaker are reported but do not fail the check, since
// rulings commit without them.
func Health(store Pinger, redis Pinger, extractionCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if store.Ping(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if redis != nil {
			redisStatus = "connected"
			if redis.Ping(ctx) != nil {
				redisStatus = "error"
			}
		}

		extraction := "unknown"
		if extractionCB != nil {
			extraction = extractionCB.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":         status == http.StatusOK,
			"db":         dbStatus,
			"redis":      redisStatus,
			"extraction": extraction,
		})
	}
}
