package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTooManyAttempts = errors.New("too many attempts")

type Limiter struct {
	redis *redis.Client
}

func NewLimiter(redisClient *redis.Client) *Limiter {
	return &Limiter{redis: redisClient}
}

// CheckLogin counts failed-login windows per email: 5 attempts per 15
// minutes.
func (l *Limiter) CheckLogin(ctx context.Context, email string) error {
	return l.check(ctx, fmt.Sprintf("login_attempts:%s", email), 5, 15*time.Minute)
}

// CheckUpload limits attachment uploads per actor to 30 per hour.
func (l *Limiter) CheckUpload(ctx context.Context, actorID string) error {
	return l.check(ctx, fmt.Sprintf("upload_attempts:%s", actorID), 30, time.Hour)
}

func (l *Limiter) check(ctx context.Context, key string, max int64, window time.Duration) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: failed to increment %s: %w", key, err)
	}
	if count == 1 {
		l.redis.Expire(ctx, key, window)
	}
	if count > max {
		return ErrTooManyAttempts
	}
	return nil
}

// Reset clears the login counter after a successful login.
func (l *Limiter) Reset(ctx context.Context, email string) {
	l.redis.Del(ctx, fmt.Sprintf("login_attempts:%s", email))
}
