package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rongwang/tripdate-server/internal/config"
	"github.com/rongwang/tripdate-server/internal/utils"
)

// tokenBucketScript refills and takes one token atomically.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimitMiddleware limits requests per client IP and route with a
// Redis token bucket. It is a pass-through when disabled or when rdb is
// nil, and fails open on Redis errors.
func RateLimitMiddleware(cfg config.RateLimitConfig, rdb *redis.Client, logger *utils.Logger) gin.HandlerFunc {
	if !cfg.Enabled || rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}

	// EXPIRE with 0 deletes the bucket, so anything under a second rounds up
	ttlSeconds := int64(math.Ceil(cfg.TTL.Seconds()))
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}
	refills := cfg.RefillInterval > 0 && cfg.RefillTokens > 0

	return func(c *gin.Context) {
		key := rateKey(cfg.Prefix, c.ClientIP(), c.Request.Method, c.FullPath())
		args := []interface{}{
			time.Now().UnixMilli(),
			cfg.Capacity,
			cfg.RefillTokens,
			cfg.RefillInterval.Milliseconds(),
			ttlSeconds,
		}

		vals, err := tokenBucketScript.Run(c.Request.Context(), rdb, []string{key}, args...).Int64Slice()
		if err != nil || len(vals) != 3 {
			logger.Warn("rate limit check failed for %s: %v", key, err)
			c.Next()
			return
		}

		allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			// Without refill an empty bucket only recovers when its key expires
			secs := int64(math.Ceil(float64(retryMs) / 1000.0))
			if !refills {
				secs = ttlSeconds
			}
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.FormatInt(secs, 10))
			writeError(c, http.StatusTooManyRequests, CodeRateLimited,
				fmt.Sprintf("rate limit exceeded, retry in %ds", secs))
			return
		}
		c.Next()
	}
}

func rateKey(prefix, ip, method, route string) string {
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{prefix, "ip", ip, "route", method + " " + route}, ":")
}
