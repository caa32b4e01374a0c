package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP. Idle buckets are
// dropped by a background loop until Stop is called.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	log   *slog.Logger

	mu      sync.Mutex
	clients map[string]*limiterEntry

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(perMinute, burst int, cleanupInterval time.Duration, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = slog.Default()
	}
	rl := &RateLimiter{
		log:     log,
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idle:    cleanupInterval,
		clients: make(map[string]*limiterEntry),
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop(cleanupInterval)
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	e, ok := rl.clients[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = e
	}
	e.lastAccess = time.Now()
	rl.mu.Unlock()

	return e.limiter.Allow()
}

// Middleware keys on r.RemoteAddr. That is the socket peer unless chi's
// RealIP runs first, which only makes sense behind a trusted proxy.
func (rl *RateLimiter) Middleware(onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !rl.Allow(key) {
				retry := int(math.Ceil(1 / float64(rl.limit)))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				rl.log.Warn("rate limit exceeded", slog.String("client", key), slog.String("path", r.URL.Path))
				onLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.idle)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, e := range rl.clients {
		if e.lastAccess.Before(cutoff) {
			delete(rl.clients, k)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
