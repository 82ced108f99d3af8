package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	csrfKeyPrefix  = "csrf:session:"
	csrfTokenBytes = 32
	DefaultCsrfTTL = time.Hour
)

var errEmptySession = errors.New("session id is required")

// CsrfGuard issues and checks per-session synchronizer tokens.
type CsrfGuard interface {
	Issue(ctx context.Context, sessionID string) (string, error)
	Validate(ctx context.Context, sessionID, submitted string) bool
	Destroy(ctx context.Context, sessionID string) error
}

type csrfGuard struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewCsrfGuard creates a CsrfGuard storing session tokens in Redis.
func NewCsrfGuard(redisClient *redis.Client, ttl time.Duration) CsrfGuard {
	if ttl <= 0 {
		ttl = DefaultCsrfTTL
	}
	return &csrfGuard{redis: redisClient, ttl: ttl}
}

func csrfKey(sessionID string) string {
	return csrfKeyPrefix + sessionID
}

// Issue returns the session's token, generating one on first use.
// Each call refreshes the session TTL.
func (g *csrfGuard) Issue(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", errEmptySession
	}
	key := csrfKey(sessionID)

	existing, err := g.redis.Get(ctx, key).Result()
	switch {
	case err == nil && existing != "":
		if err := g.redis.Expire(ctx, key, g.ttl).Err(); err != nil {
			return "", fmt.Errorf("failed to refresh csrf session: %w", err)
		}
		return existing, nil
	case err != nil && !errors.Is(err, redis.Nil):
		return "", fmt.Errorf("failed to read csrf session: %w", err)
	}

	token, err := generateCsrfToken()
	if err != nil {
		return "", err
	}

	// SetNX keeps one token per session if two requests race.
	stored, err := g.redis.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to store csrf token: %w", err)
	}
	if !stored {
		return g.redis.Get(ctx, key).Result()
	}
	return token, nil
}

// Validate is fail-closed: missing state and storage errors both reject.
func (g *csrfGuard) Validate(ctx context.Context, sessionID, submitted string) bool {
	if sessionID == "" || submitted == "" {
		return false
	}
	stored, err := g.redis.Get(ctx, csrfKey(sessionID)).Result()
	if err != nil || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

func (g *csrfGuard) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := g.redis.Del(ctx, csrfKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to destroy csrf session: %w", err)
	}
	return nil
}

func generateCsrfToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
