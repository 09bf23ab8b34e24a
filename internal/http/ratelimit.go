package http

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// loginLimiter counts login attempts per client IP in Redis with a TTL window.
// Without a Redis client it is a no-op, and it fails open when Redis is down.
type loginLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func newLoginLimiter(client *redis.Client, max int, window time.Duration) *loginLimiter {
	return &loginLimiter{client: client, max: max, window: window}
}

func (l *loginLimiter) allow(ctx context.Context, ip string) bool {
	if l.client == nil || ip == "" || l.max <= 0 {
		return true
	}
	key := loginAttemptKey(ip)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("login limiter unavailable: %v", err)
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			log.Printf("login limiter expire failed: %v", err)
		}
	}
	return count <= int64(l.max)
}

func (l *loginLimiter) reset(ctx context.Context, ip string) {
	if l.client == nil || ip == "" {
		return
	}
	if err := l.client.Del(ctx, loginAttemptKey(ip)).Err(); err != nil {
		log.Printf("login limiter reset failed: %v", err)
	}
}

func loginAttemptKey(ip string) string {
	return "login_attempts:" + ip
}
