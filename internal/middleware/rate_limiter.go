package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sweepEvery = 5 * time.Minute

type window struct {
	hits int
	ends time.Time
}

// clientLimiter counts requests per client IP in fixed windows. Expired windows
// are swept while serving a request, at most once per sweepEvery.
type clientLimiter struct {
	mu        sync.Mutex
	limit     int
	span      time.Duration
	clients   map[string]*window
	lastSweep time.Time
}

func (l *clientLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepEvery {
		l.sweep(now)
	}

	w, ok := l.clients[ip]
	if !ok || now.After(w.ends) {
		w = &window{ends: now.Add(l.span)}
		l.clients[ip] = w
	}
	w.hits++
	return w.hits <= l.limit, w.ends
}

func (l *clientLimiter) sweep(now time.Time) {
	before := len(l.clients)
	for ip, w := range l.clients {
		if now.After(w.ends) {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
	if purged := before - len(l.clients); purged > 0 {
		log.Debug().Int("entries_purged", purged).Int("entries_remaining", len(l.clients)).Msg("rate limiter swept")
	}
}

// RateLimiter allows limit requests per span for each client IP. Every call
// builds an independent limiter.
func RateLimiter(limit int, span time.Duration) gin.HandlerFunc {
	l := &clientLimiter{limit: limit, span: span, clients: make(map[string]*window), lastSweep: time.Now()}
	return func(c *gin.Context) {
		now := time.Now()
		ok, ends := l.allow(c.ClientIP(), now)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(ends.Sub(now).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests, retry shortly"))
			return
		}
		c.Next()
	}
}
