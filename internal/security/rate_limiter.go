package security

import (
	"sync"
	"time"

	"github.com/raaihank/record-sentinel/internal/config"
	"golang.org/x/time/rate"
)

const (
	idleClientTTL   = time.Hour
	cleanupInterval = 30 * time.Minute
)

// RateLimiter applies a token bucket per client address
type RateLimiter struct {
	config  config.RateLimitConfig
	clients map[string]*clientLimiter
	mu      sync.Mutex
	now     func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:  cfg,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow checks if a request from the given client is allowed
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.config.Enabled {
		return true
	}
	now := r.now()
	return r.limiterFor(clientIP, now).AllowN(now, 1)
}

// Clients returns the number of tracked clients
func (r *RateLimiter) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *RateLimiter) limiterFor(clientIP string, now time.Time) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, exists := r.clients[clientIP]
	if !exists {
		burst := r.config.Burst
		if burst <= 0 {
			burst = max(r.config.RequestsPerMin, 1)
		}
		client = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(r.config.RequestsPerMin)/60.0), burst),
		}
		r.clients[clientIP] = client
	}
	client.lastSeen = now
	return client.limiter
}

// CleanupIdleClients forgets clients not seen for an hour
func (r *RateLimiter) CleanupIdleClients() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idleClientTTL)
	for ip, client := range r.clients {
		if client.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
		}
	}
}

// StartCleanupRoutine periodically forgets idle clients until stop is closed
func (r *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.CleanupIdleClients()
			case <-stop:
				return
			}
		}
	}()
}
