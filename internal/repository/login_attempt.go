package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"gorm.io/gorm"
)

// LoginAttemptRepository is the narrow store behind rate limiting.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt *models.LoginAttempt) error
	CountSince(ctx context.Context, email string, since time.Time) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type loginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository instance.
func NewLoginAttemptRepository(db *gorm.DB) LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

func (r *loginAttemptRepository) Insert(ctx context.Context, attempt *models.LoginAttempt) error {
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to insert login attempt: %w", err)
	}
	return nil
}

func (r *loginAttemptRepository) CountSince(ctx context.Context, email string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoginAttempt{}).
		Where("email = ? AND attempted_at > ?", email, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count login attempts for %s: %w", email, err)
	}
	return count, nil
}

func (r *loginAttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("attempted_at < ?", cutoff).
		Delete(&models.LoginAttempt{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune login attempts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
