package handlers

import (
	"net/http"
	"sync"
	"time"

	"storefront/internal/cache"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const maxVisitors = 10000

// RateLimiter allows each client IP a number of requests per window.
// Idle clients are forgotten once their window passes.
type RateLimiter struct {
	mu       sync.Mutex
	visitors *cache.Cache[*rate.Limiter]
	limit    rate.Limit
	burst    int
	message  string
}

func NewRateLimiter(requests int, window time.Duration, message string) *RateLimiter {
	return &RateLimiter{
		visitors: cache.New[*rate.Limiter](maxVisitors, window),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		message:  message,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.visitors.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.visitors.Set(key, lim)
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, envelope{Success: false, Message: l.message})
			return
		}
		c.Next()
	}
}

func globalLimiter() *RateLimiter {
	return NewRateLimiter(100, 15*time.Minute, "Too many requests, please try again later.")
}

func authLimiter() *RateLimiter {
	return NewRateLimiter(10, 10*time.Minute, "Too many auth attempts. Try again later.")
}

func productLimiter() *RateLimiter {
	return NewRateLimiter(60, time.Minute, "Too many product requests. Slow down.")
}
