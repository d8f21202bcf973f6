package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// window is the fixed counting window for redis-backed throttling.
const window = time.Minute

// Limiter throttles login attempts per client key. With a redis client it
// uses a fixed one-minute window shared across instances; without one (or
// when redis is unreachable) it falls back to per-key token buckets held in
// process memory.
type Limiter struct {
	rdb       *redis.Client
	perMinute int

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// New creates a Limiter allowing perMinute attempts per key. rdb may be nil.
func New(rdb *redis.Client, perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &Limiter{
		rdb:       rdb,
		perMinute: perMinute,
		local:     make(map[string]*rate.Limiter),
	}
}

// Allow reports whether another attempt is permitted for the key.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.rdb != nil {
		allowed, err := l.allowRedis(ctx, key)
		if err == nil {
			return allowed
		}
		log.WithError(err).Warn("ratelimit: redis unavailable, using local limiter")
	}
	return l.allowLocal(key)
}

// allowRedis counts attempts in a fixed window keyed per client.
func (l *Limiter) allowRedis(ctx context.Context, key string) (bool, error) {
	redisKey := "loyalty:login:" + key

	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if errExpire := l.rdb.Expire(ctx, redisKey, window).Err(); errExpire != nil {
			return false, errExpire
		}
	}
	return count <= int64(l.perMinute), nil
}

// allowLocal consults the in-process token bucket for the key.
func (l *Limiter) allowLocal(key string) bool {
	l.mu.Lock()
	limiter, ok := l.local[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.perMinute)
		l.local[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		if !l.Allow(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many attempts, please try again later",
			})
			return
		}
		c.Next()
	}
}
