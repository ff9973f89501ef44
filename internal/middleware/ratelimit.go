package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

// WindowCounter increments a fixed-window counter and reports the time left in the window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimiter counts requests per client IP in fixed windows. Redis is used when
// available; a process-local counter takes over when it is not.
type RateLimiter struct {
	store  WindowCounter
	local  *memoryWindows
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds a limiter. store may be nil.
func NewRateLimiter(store WindowCounter, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		store:  store,
		local:  &memoryWindows{entries: map[string]*memoryWindow{}},
		logger: logger,
		now:    time.Now,
	}
}

// Limit allows max requests per window for each client under the given name.
func (l *RateLimiter) Limit(name string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 || window <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())
		count, left := l.hit(c.Request.Context(), key, window)

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(max) {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(left.Seconds()))))
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, "Too many requests. Please try again later."))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration) {
	if l.store != nil {
		count, left, err := l.store.IncrWindow(ctx, key, window)
		if err == nil {
			return count, left
		}
		l.logger.Debug("rate limit store unavailable, using local counter", zap.Error(err))
	}
	return l.local.incr(key, window, l.now())
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

type memoryWindows struct {
	mu      sync.Mutex
	entries map[string]*memoryWindow
}

func (m *memoryWindows) incr(key string, window time.Duration, now time.Time) (int64, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &memoryWindow{resetAt: now.Add(window)}
		m.entries[key] = entry
		m.sweep(now)
	}
	entry.count++
	return entry.count, entry.resetAt.Sub(now)
}

// sweep drops expired windows so the map does not grow with every client seen.
func (m *memoryWindows) sweep(now time.Time) {
	if len(m.entries) < 1024 {
		return
	}
	for k, e := range m.entries {
		if !now.Before(e.resetAt) {
			delete(m.entries, k)
		}
	}
}
