package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/GunarsK-portfolio/workshop-planner/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore looks up users and verifies or hashes their passwords.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	VerifyPassword(plaintext, hash string) bool
	HashPassword(plaintext string) (string, error)
	RecordAttempt(ctx context.Context, email, source string, succeeded bool) error
}

type credentialStore struct {
	users    repository.UserRepository
	attempts repository.LoginAttemptRepository
	cost     int
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewCredentialStore creates a CredentialStore hashing with the given bcrypt cost.
func NewCredentialStore(users repository.UserRepository, attempts repository.LoginAttemptRepository, cost int) CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &credentialStore{
		users:    users,
		attempts: attempts,
		cost:     cost,
		now:      time.Now,
	}
}

// FindByEmail returns ErrInvalidCredentials for unknown addresses.
func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// VerifyPassword reports whether plaintext matches hash. An empty hash never
// matches but is still compared against a throwaway hash of the same cost,
// so unknown accounts take as long to reject as wrong passwords.
func (s *credentialStore) VerifyPassword(plaintext, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(s.placeholderHash(), []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (s *credentialStore) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func (s *credentialStore) HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *credentialStore) RecordAttempt(ctx context.Context, email, source string, succeeded bool) error {
	return s.attempts.Insert(ctx, &models.LoginAttempt{
		ID:            uuid.NewString(),
		Email:         NormalizeEmail(email),
		SourceAddress: source,
		AttemptedAt:   s.now().UTC(),
		Succeeded:     succeeded,
	})
}

// NormalizeEmail trims surrounding whitespace. Addresses are otherwise
// matched exactly as stored, so case is significant.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
