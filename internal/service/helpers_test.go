package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/GunarsK-portfolio/workshop-planner/internal/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

// =============================================================================
// Mock UserRepository
// =============================================================================

type mockUserRepository struct {
	findByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	findByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	createFunc         func(ctx context.Context, user *models.User) error
	updatePasswordFunc func(ctx context.Context, id, hash string) error
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, fmt.Errorf("failed to find user by email %s: %w", email, repository.ErrNotFound)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("failed to find user by id %s: %w", id, repository.ErrNotFound)
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, id, hash)
	}
	return errors.New("not implemented")
}

// =============================================================================
// In-memory LoginAttemptRepository
// =============================================================================

type memoryAttemptStore struct {
	mu       sync.Mutex
	attempts []models.LoginAttempt
	err      error
}

func (s *memoryAttemptStore) Insert(_ context.Context, attempt *models.LoginAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.attempts = append(s.attempts, *attempt)
	return nil
}

func (s *memoryAttemptStore) CountSince(_ context.Context, email string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var count int64
	for _, a := range s.attempts {
		if a.Email == email && a.AttemptedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (s *memoryAttemptStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	kept := s.attempts[:0]
	var deleted int64
	for _, a := range s.attempts {
		if a.AttemptedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	s.attempts = kept
	return deleted, nil
}

func (s *memoryAttemptStore) all() []models.LoginAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LoginAttempt(nil), s.attempts...)
}

// =============================================================================
// Mock WorkshopRepository
// =============================================================================

type mockWorkshopRepository struct {
	listFunc     func(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, error)
	findByIDFunc func(ctx context.Context, id string) (*models.Workshop, error)
	createFunc   func(ctx context.Context, workshop *models.Workshop) error
	updateFunc   func(ctx context.Context, workshop *models.Workshop) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockWorkshopRepository) List(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockWorkshopRepository) FindByID(ctx context.Context, id string) (*models.Workshop, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("failed to find workshop %s: %w", id, repository.ErrNotFound)
}

func (m *mockWorkshopRepository) Create(ctx context.Context, workshop *models.Workshop) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, workshop)
	}
	return nil
}

func (m *mockWorkshopRepository) Update(ctx context.Context, workshop *models.Workshop) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, workshop)
	}
	return nil
}

func (m *mockWorkshopRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// =============================================================================
// Test Helpers
// =============================================================================

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

func newTestCodec(t *testing.T) *tokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenConfig{
		Secret:   testSecret,
		TTL:      7 * 24 * time.Hour,
		Issuer:   "workshop-planner",
		Audience: "workshop-planner",
	})
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	return codec.(*tokenCodec)
}

func testUser() *models.User {
	return &models.User{
		ID:    "7d4a1a6e-4a52-4c6b-9f0e-0f6f7f1f2a11",
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Role:  models.RoleTeacher,
	}
}
