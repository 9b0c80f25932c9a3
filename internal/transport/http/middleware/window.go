package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// WindowStore counts hits per key within a time window. Implementations must
// be safe for concurrent use. Increment returns the count including the
// current hit.
type WindowStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
}

// WindowLimiter enforces a fixed request budget per client IP over a sliding
// window, 100 requests per minute by default. The counting store is injected
// so multiple instances can share a Redis backend; a store failure lets the
// request through rather than taking the API down.
type WindowLimiter struct {
	store  WindowStore
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewWindowLimiter(store WindowStore, limit int, window time.Duration, logger *zap.Logger) *WindowLimiter {
	return &WindowLimiter{store: store, limit: limit, window: window, logger: logger}
}

// Limit is the middleware handler.
func (wl *WindowLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, err := wl.store.Increment(r.Context(), clientIP(r), wl.window)
		if err != nil {
			wl.logger.Warn("rate limit store unavailable", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if count > wl.limit {
			w.Header().Set("Retry-After", "60")
			http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the caller address, honoring the first X-Forwarded-For
// entry set by the load balancer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MemoryWindowStore keeps per-key hit timestamps in memory. Suitable for a
// single instance; use the Redis store when running more than one.
type MemoryWindowStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

func NewMemoryWindowStore() *MemoryWindowStore {
	s := &MemoryWindowStore{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
	go s.cleanup()
	return s
}

// cleanup drops keys whose newest hit is older than 10 minutes.
func (s *MemoryWindowStore) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		s.mu.Lock()
		cutoff := s.now().Add(-10 * time.Minute)
		for key, hits := range s.hits {
			if len(hits) == 0 || hits[len(hits)-1].Before(cutoff) {
				delete(s.hits, key)
			}
		}
		s.mu.Unlock()
	}
}

func (s *MemoryWindowStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)
	kept := s.hits[key][:0]
	for _, t := range s.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	s.hits[key] = kept
	return len(kept), nil
}

// RedisWindowStore counts hits in Redis so the limit holds across instances.
// A fixed-window counter with the window as TTL is close enough to sliding
// behavior at this granularity.
type RedisWindowStore struct {
	client *redis.Client
	prefix string
}

func NewRedisWindowStore(client *redis.Client, prefix string) *RedisWindowStore {
	return &RedisWindowStore{client: client, prefix: prefix}
}

func (s *RedisWindowStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	k := s.prefix + ":" + key
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	// NX so the window expires from the first hit; a plain Expire would push
	// the deadline out on every request and the counter would never reset.
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}
