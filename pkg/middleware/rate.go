// Package middleware provides the HTTP middleware chain: auth gates,
// access logging, panic recovery, CORS and rate limiting.
package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/kirana/config"
)

// limiter decides whether one more request from an IP is allowed.
type limiter interface {
	allow(ctx context.Context, ip string, max int, window time.Duration) bool
}

// ── Redis limiter ────────────────────────────────────────────────────────────

// redisLimiter counts requests per IP with INCR + EXPIRE, so the limit is
// shared across replicas. On any Redis error it answers allow — throttling
// must never take the API down with it.
type redisLimiter struct {
	rdb *redis.Client
}

func (l *redisLimiter) allow(ctx context.Context, ip string, max int, window time.Duration) bool {
	key := "ratelimit:" + ip

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		_ = l.rdb.Expire(ctx, key, window).Err()
	}
	return n <= int64(max)
}

// ── In-memory fallback ───────────────────────────────────────────────────────

// bucket tracks a sliding-window request count for one IP.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) take(max int, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func newMemoryLimiter() *memoryLimiter {
	l := &memoryLimiter{buckets: map[string]*bucket{}}

	// Evict buckets whose window has expired; prevents unbounded memory
	// growth on long-running servers.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			l.mu.Lock()
			for ip, b := range l.buckets {
				b.mu.Lock()
				expired := now.After(b.resetAt)
				b.mu.Unlock()
				if expired {
					delete(l.buckets, ip)
				}
			}
			l.mu.Unlock()
		}
	}()

	return l
}

func (l *memoryLimiter) allow(_ context.Context, ip string, max int, window time.Duration) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{resetAt: time.Now().Add(window)}
		l.buckets[ip] = b
	}
	l.mu.Unlock()

	return b.take(max, window)
}

// ── Middleware ───────────────────────────────────────────────────────────────

// clientIP resolves the address a request is throttled under. The
// X-Forwarded-For header is honoured (first hop only) solely when
// TRUSTED_PROXY=true — otherwise any client could dodge the limiter by
// varying the header per request.
func clientIP(r *http.Request) string {
	if strings.EqualFold(config.Get("TRUSTED_PROXY", "false"), "true") {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	// Key on the host only; the ephemeral port would give every
	// connection a fresh bucket.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit limits each IP to max requests per window. With a Redis client
// the count is shared across instances; pass nil to fall back to the
// per-process in-memory limiter.
func RateLimit(rdb *redis.Client, max int, window time.Duration) func(http.Handler) http.Handler {
	var l limiter
	if rdb != nil {
		l = &redisLimiter{rdb: rdb}
	} else {
		l = newMemoryLimiter()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(r.Context(), clientIP(r), max, window) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"success":false,"message":"Too Many Requests"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
