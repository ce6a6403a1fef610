package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// KeyPrefix prefixes every token bucket key in Redis.
const KeyPrefix = "ratelimit:tb:"

// bucketTTL keeps idle buckets around long enough to refill completely.
const bucketTTL = 60

// tokenBucket refills a bucket by elapsed*rate, capped at capacity,
// and takes one token if available. Returns 1 when allowed.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// RateLimiter implements a Redis-backed token bucket shared by the gRPC
// and HTTP servers. Redis failures let the request through.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Config returns the limiter configuration.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.config
}

// Allow takes one token from the bucket identified by key.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil || !rl.config.Enabled || rl.client == nil {
		return true
	}

	now := float64(rl.now().UnixMicro()) / 1e6
	allowed, err := tokenBucket.Run(ctx, rl.client, []string{KeyPrefix + key},
		rl.config.RequestsPerSecond,
		rl.config.BurstCapacity,
		now,
		bucketTTL,
	).Int64()
	if err != nil {
		// On Redis error, allow request to proceed (fail open)
		rl.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}

	if allowed == 0 {
		rl.log.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Float64("limit", rl.config.RequestsPerSecond),
			zap.Int("burst", rl.config.BurstCapacity),
		)
		return false
	}
	return true
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		// Skip rate limiting if disabled
		if !rl.config.Enabled {
			return handler(ctx, req)
		}

		// ratelimit:tb:{method}:{ip}
		key := fmt.Sprintf("%s:%s", info.FullMethod, rl.getClientIP(ctx))
		if !rl.Allow(ctx, key) {
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %.2f requests/second (burst capacity: %d)",
				rl.config.RequestsPerSecond, rl.config.BurstCapacity)
		}

		return handler(ctx, req)
	}
}

// getClientIP extracts the client IP address from the gRPC context.
func (rl *RateLimiter) getClientIP(ctx context.Context) string {
	// Proxies put the original address in metadata
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	// Fallback to peer address
	if p, ok := peer.FromContext(ctx); ok {
		return p.Addr.String()
	}

	return "unknown"
}
