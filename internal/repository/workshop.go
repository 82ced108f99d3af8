package repository

import (
	"context"
	"fmt"

	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"gorm.io/gorm"
)

// WorkshopRepository defines the interface for workshop data operations.
type WorkshopRepository interface {
	List(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, error)
	FindByID(ctx context.Context, id string) (*models.Workshop, error)
	Create(ctx context.Context, workshop *models.Workshop) error
	Update(ctx context.Context, workshop *models.Workshop) error
	Delete(ctx context.Context, id string) error
}

type workshopRepository struct {
	db *gorm.DB
}

// NewWorkshopRepository creates a new WorkshopRepository instance.
func NewWorkshopRepository(db *gorm.DB) WorkshopRepository {
	return &workshopRepository{db: db}
}

func (r *workshopRepository) List(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, error) {
	query := r.db.WithContext(ctx).Preload("Teacher")
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", *filter.Date)
	}
	if filter.TeacherID != "" {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}

	var workshops []models.Workshop
	if err := query.Order("date ASC").Order("created_at ASC").Find(&workshops).Error; err != nil {
		return nil, fmt.Errorf("failed to list workshops: %w", err)
	}
	return workshops, nil
}

func (r *workshopRepository) FindByID(ctx context.Context, id string) (*models.Workshop, error) {
	var workshop models.Workshop
	err := r.db.WithContext(ctx).Preload("Teacher").Where("id = ?", id).First(&workshop).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find workshop %s: %w", id, translate(err))
	}
	return &workshop, nil
}

func (r *workshopRepository) Create(ctx context.Context, workshop *models.Workshop) error {
	if err := r.db.WithContext(ctx).Omit("Teacher").Create(workshop).Error; err != nil {
		return fmt.Errorf("failed to create workshop: %w", translate(err))
	}
	return nil
}

func (r *workshopRepository) Update(ctx context.Context, workshop *models.Workshop) error {
	result := r.db.WithContext(ctx).
		Model(&models.Workshop{}).
		Where("id = ?", workshop.ID).
		Updates(map[string]any{
			"title":       workshop.Title,
			"description": workshop.Description,
			"subject":     workshop.Subject,
			"date":        workshop.Date,
			"updated_at":  workshop.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update workshop %s: %w", workshop.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update workshop %s: %w", workshop.ID, ErrNotFound)
	}
	return nil
}

func (r *workshopRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Workshop{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete workshop %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete workshop %s: %w", id, ErrNotFound)
	}
	return nil
}
