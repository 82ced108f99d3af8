package service

import (
	"context"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/internal/repository"
)

// RateLimiter decides whether another login attempt is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

type rateLimiter struct {
	attempts    repository.LoginAttemptRepository
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewRateLimiter creates a trailing-window limiter over recorded login attempts.
func NewRateLimiter(attempts repository.LoginAttemptRepository, maxAttempts int, window time.Duration) RateLimiter {
	return &rateLimiter{
		attempts:    attempts,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Allow purges attempts older than the window for every identifier, then
// counts what remains for this one. Successful attempts count too.
func (l *rateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	cutoff := l.now().UTC().Add(-l.window)

	if _, err := l.attempts.DeleteBefore(ctx, cutoff); err != nil {
		return false, err
	}

	count, err := l.attempts.CountSince(ctx, NormalizeEmail(identifier), cutoff)
	if err != nil {
		return false, err
	}
	return count < int64(l.maxAttempts), nil
}
