// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles destructive operations per user using a fixed redis
// INCR/EXPIRE window.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow reports whether the user may perform the operation within the window.
func (l *Limiter) Allow(ctx context.Context, userID int64, operation string, maxRequests int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%d", operation, userID)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		l.client.Expire(ctx, key, window)
	}

	return count <= maxRequests, nil
}
