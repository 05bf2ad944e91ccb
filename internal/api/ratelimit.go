package api

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"slide-generator/internal/common/config"
	"slide-generator/internal/common/database"
	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/common/metrics"
)

// RateLimiter decides whether one more request for key fits in its budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// Rule is a request budget: Limit requests per Window.
type Rule struct {
	Scope  string
	Limit  int
	Window time.Duration
}

// Limit binds a rule to the limiter enforcing it.
type Limit struct {
	Rule
	Limiter RateLimiter
}

// SlidingWindowLimiter keeps request timestamps per key in process memory.
// A background goroutine drops keys that went a full window without a
// request until Stop is called.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	cleanupInt time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

type window struct {
	requests []time.Time
	mu       sync.Mutex
}

func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		cleanupInt: windowSize,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	if l.cleanupInt < time.Minute {
		l.cleanupInt = time.Minute
	}

	go l.cleanup()

	return l
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	// w is locked before l.mu is released so eviction never drops a window
	// that is being written.
	l.mu.Lock()
	w, exists := l.windows[key]
	if !exists {
		w = &window{}
		l.windows[key] = w
	}
	w.mu.Lock()
	l.mu.Unlock()
	defer w.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.windowSize)

	valid := w.requests[:0]
	for _, t := range w.requests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	w.requests = valid

	if len(w.requests) >= l.limit {
		return false, nil
	}
	w.requests = append(w.requests, now)
	return true, nil
}

func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Len reports how many keys are tracked.
func (l *SlidingWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop ends the cleanup goroutine. Allow keeps working afterwards.
func (l *SlidingWindowLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *SlidingWindowLimiter) cleanup() {
	ticker := time.NewTicker(l.cleanupInt)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

// evictIdle removes keys whose newest request fell out of the window.
func (l *SlidingWindowLimiter) evictIdle() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := l.now().Add(-l.windowSize)
	evicted := 0
	for key, w := range l.windows {
		w.mu.Lock()
		n := len(w.requests)
		if n == 0 || !w.requests[n-1].After(windowStart) {
			delete(l.windows, key)
			evicted++
		}
		w.mu.Unlock()
	}
	return evicted
}

// RedisWindowLimiter counts requests in fixed windows shared by every API
// replica. Keys: <prefix>:ratelimit:<scope>:<key>:<window index>.
type RedisWindowLimiter struct {
	client *database.RedisClient
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisWindowLimiter(client *database.RedisClient, scope string, limit int, window time.Duration) *RedisWindowLimiter {
	return &RedisWindowLimiter{
		client: client,
		scope:  scope,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisWindowLimiter) windowKey(key string) string {
	idx := l.now().UnixNano() / int64(l.window)
	return l.client.Key("ratelimit", l.scope, key, strconv.FormatInt(idx, 10))
}

func (l *RedisWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.windowKey(key)

	var incr *redis.IntCmd
	_, err := l.client.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", l.scope, err)
	}
	return incr.Val() <= int64(l.limit), nil
}

func (l *RedisWindowLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.windowKey(key))
}

// BuildLimits returns the limits applied to every route and the extra limits
// applied to presentation creation.
func BuildLimits(cfg config.RateLimitConfig, rdb *database.RedisClient) (defaults, create []Limit, err error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	if cfg.Backend == "redis" && rdb == nil {
		return nil, nil, fmt.Errorf("redis rate limiting requires a redis client")
	}

	newLimit := func(rule Rule) Limit {
		if cfg.Backend == "redis" {
			return Limit{Rule: rule, Limiter: NewRedisWindowLimiter(rdb, rule.Scope, rule.Limit, rule.Window)}
		}
		return Limit{Rule: rule, Limiter: NewSlidingWindowLimiter(rule.Limit, rule.Window)}
	}

	if cfg.PerDay > 0 {
		defaults = append(defaults, newLimit(Rule{Scope: "day", Limit: cfg.PerDay, Window: 24 * time.Hour}))
	}
	if cfg.PerHour > 0 {
		defaults = append(defaults, newLimit(Rule{Scope: "hour", Limit: cfg.PerHour, Window: time.Hour}))
	}
	if cfg.CreatePerMinute > 0 {
		create = append(create, newLimit(Rule{Scope: "create", Limit: cfg.CreatePerMinute, Window: time.Minute}))
	}
	return defaults, create, nil
}

// RateLimit rejects requests from a client IP that exhausted any of limits.
// Limiter backend errors let the request through.
func RateLimit(limits []Limit, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(limits) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientIP(r)
			for _, l := range limits {
				allowed, err := l.Limiter.Allow(r.Context(), key)
				if err != nil {
					log.Warn("Rate limiter unavailable", map[string]interface{}{
						"scope": l.Scope,
						"error": err,
					})
					continue
				}
				if !allowed {
					metrics.RateLimitRejections.WithLabelValues(l.Scope).Inc()
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(l.Window.Seconds()))))
					RespondError(w, apperrors.NewRateLimitedError(l.Scope))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the connection peer, or the forwarded address when RealIP ran
// behind a trusted proxy.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
