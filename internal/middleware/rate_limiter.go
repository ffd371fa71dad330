package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows requestsPerMin on average with the given burst.
func NewLocalLimiter(requestsPerMin, burst int) *LocalLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &LocalLimiter{
		limit:    rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
		idle:     3 * time.Minute,
		visitors: make(map[string]*visitor),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

// RedisLimiter is a sliding-window limiter shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	rate   int
	window time.Duration
}

// NewRedisLimiter allows requests per window per key.
func NewRedisLimiter(client *redis.Client, requests int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client: client,
		prefix: "rate_limit:tasks:",
		rate:   requests,
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + key
	now := time.Now().UnixNano()
	windowStart := now - l.window.Nanoseconds()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: fmt.Sprintf("%d-%s", now, uuid.NewString())})
	pipe.Expire(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline: %w", err)
	}
	return countCmd.Val() < int64(l.rate), nil
}

// RateLimit rejects requests over the limit with 429, keyed by client IP.
// Limiter errors let the request through.
func RateLimit(limiter Limiter, logger *zap.Logger) Middleware {
	if limiter == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			checkCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			allowed, err := limiter.Allow(checkCtx, ctx.RemoteIP().String())
			cancel()
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next(ctx)
				return
			}
			if !allowed {
				writeJSON(ctx, fasthttp.StatusTooManyRequests, `{"detail":"rate limit exceeded","code":"RATE_LIMITED"}`)
				return
			}
			next(ctx)
		}
	}
}
