package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/erp/realestate/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per caller key. A bucket holds limit
// tokens and refills at limit per window, so a quiet caller can burst up to
// limit requests.
type RateLimiter struct {
	limit  int
	every  rate.Limit
	refill time.Duration

	mu      sync.Mutex
	buckets map[string]*rate.Limiter

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter that evicts full buckets every two windows.
// Call Stop to end the eviction loop.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		every:   rate.Limit(float64(limit) / window.Seconds()),
		refill:  window / time.Duration(max(limit, 1)),
		buckets: make(map[string]*rate.Limiter),
		stop:    make(chan struct{}),
	}
	go rl.evictLoop(2 * window)
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		b = rate.NewLimiter(rl.every, rl.limit)
		rl.buckets[key] = b
	}
	return b
}

// Allow takes one token from key's bucket
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

// Remaining is the number of whole tokens left for key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	rl.mu.Unlock()
	if !ok {
		return rl.limit
	}
	return int(math.Floor(b.Tokens()))
}

func (rl *RateLimiter) Limit() int { return rl.limit }

// retryAfter is the time for one token to refill, in whole seconds
func (rl *RateLimiter) retryAfter() int {
	return max(1, int(math.Ceil(rl.refill.Seconds())))
}

// evictLoop drops buckets that refilled completely; a new bucket for the same
// key starts full, so eviction never grants extra requests
func (rl *RateLimiter) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if b.TokensAt(now) >= float64(rl.limit) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RateLimit limits by client IP, scoped by tenant once JWT auth has run
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		if tenantID := c.GetString(logger.GinTenantIDKey); tenantID != "" {
			return tenantID + ":" + c.ClientIP()
		}
		return c.ClientIP()
	})
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(limiter.retryAfter()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited,
					"Too many requests. Please try again later.", GetRequestID(c)))
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
