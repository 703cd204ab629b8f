package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Buckets idle longer than this are dropped by the sweep.
const limiterIdleAfter = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client IP and forgets
// buckets that have sat idle past limiterIdleAfter, so the map stays
// bounded by recently active clients.
type limiterPool struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*clientLimiter
}

func newLimiterPool(rps rate.Limit, burst int) *limiterPool {
	return &limiterPool{rps: rps, burst: burst, clients: make(map[string]*clientLimiter)}
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	cl, ok := p.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.clients[ip] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// sweep drops every client not seen since the cutoff.
func (p *limiterPool) sweep(cutoff time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ip, cl := range p.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(p.clients, ip)
		}
	}
}

// RateLimit applies a per-client-IP token bucket. Used on the auth
// endpoints to slow down credential stuffing.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	pool := newLimiterPool(rps, burst)
	go func() {
		ticker := time.NewTicker(limiterIdleAfter)
		defer ticker.Stop()
		for range ticker.C {
			pool.sweep(time.Now().Add(-limiterIdleAfter))
		}
	}()

	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
