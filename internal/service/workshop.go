package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/internal/events"
	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/GunarsK-portfolio/workshop-planner/internal/repository"
	"github.com/google/uuid"
)

const (
	minTitleLength       = 3
	maxTitleLength       = 255
	minDescriptionLength = 10
	maxDescriptionLength = 1000
)

type CreateWorkshopRequest struct {
	Title       string         `json:"title" binding:"required,min=3,max=255"`
	Description string         `json:"description" binding:"required,min=10,max=1000"`
	Subject     models.Subject `json:"subject" binding:"required,subject"`
	Date        string         `json:"date" binding:"required,isodate"`
}

// UpdateWorkshopRequest is a partial update; nil fields are left unchanged.
type UpdateWorkshopRequest struct {
	Title       *string         `json:"title" binding:"omitempty,min=3,max=255"`
	Description *string         `json:"description" binding:"omitempty,min=10,max=1000"`
	Subject     *models.Subject `json:"subject" binding:"omitempty,subject"`
	Date        *string         `json:"date" binding:"omitempty,isodate"`
}

// Actor is the authenticated user performing a change.
type Actor struct {
	UserID string
	Role   models.Role
}

type WorkshopService interface {
	List(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, error)
	Get(ctx context.Context, id string) (*models.Workshop, error)
	Create(ctx context.Context, actor Actor, req CreateWorkshopRequest) (*models.Workshop, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateWorkshopRequest) (*models.Workshop, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type workshopService struct {
	workshops repository.WorkshopRepository
	audit     events.Publisher
	now       func() time.Time
}

func NewWorkshopService(workshops repository.WorkshopRepository, audit events.Publisher) WorkshopService {
	if audit == nil {
		audit = events.NewNoopPublisher()
	}
	return &workshopService{
		workshops: workshops,
		audit:     audit,
		now:       time.Now,
	}
}

func (s *workshopService) List(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, error) {
	if filter.Subject != "" && !filter.Subject.Valid() {
		return nil, validationError("subject", "is not a known subject")
	}
	if filter.TeacherID != "" {
		if _, err := uuid.Parse(filter.TeacherID); err != nil {
			return nil, validationError("teacher_id", "must be a valid id")
		}
	}
	workshops, err := s.workshops.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if workshops == nil {
		workshops = []models.Workshop{}
	}
	return workshops, nil
}

func (s *workshopService) Get(ctx context.Context, id string) (*models.Workshop, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrWorkshopNotFound
	}
	workshop, err := s.workshops.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrWorkshopNotFound
		}
		return nil, err
	}
	return workshop, nil
}

func (s *workshopService) Create(ctx context.Context, actor Actor, req CreateWorkshopRequest) (*models.Workshop, error) {
	if !actor.Role.CanCreateWorkshops() {
		return nil, ErrForbidden
	}

	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		return nil, err
	}
	if !req.Subject.Valid() {
		return nil, validationError("subject", "is not a known subject")
	}
	date, err := s.validateDate(req.Date)
	if err != nil {
		return nil, err
	}

	workshop := &models.Workshop{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Subject:     req.Subject,
		Date:        date,
		TeacherID:   actor.UserID,
	}
	if err := s.workshops.Create(ctx, workshop); err != nil {
		return nil, err
	}

	s.audit.Publish(ctx, events.Event{
		Type:       events.WorkshopCreated,
		ActorID:    actor.UserID,
		Target:     workshop.ID,
		Attributes: map[string]string{"subject": string(workshop.Subject), "date": workshop.Date.String()},
	})
	return workshop, nil
}

// Update applies the non-nil fields of req. Only the owning teacher or an
// admin may update a workshop.
func (s *workshopService) Update(ctx context.Context, actor Actor, id string, req UpdateWorkshopRequest) (*models.Workshop, error) {
	workshop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManage(actor.UserID, workshop.TeacherID) {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		if workshop.Title, err = validateTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if workshop.Description, err = validateDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.Subject != nil {
		if !req.Subject.Valid() {
			return nil, validationError("subject", "is not a known subject")
		}
		workshop.Subject = *req.Subject
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		// Resubmitting the stored date is allowed even once it has passed.
		if !date.Equal(workshop.Date.Time) {
			if err := s.checkNotPast(date); err != nil {
				return nil, err
			}
		}
		workshop.Date = date
	}
	workshop.UpdatedAt = s.now().UTC()

	if err := s.workshops.Update(ctx, workshop); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrWorkshopNotFound
		}
		return nil, err
	}

	s.audit.Publish(ctx, events.Event{Type: events.WorkshopUpdated, ActorID: actor.UserID, Target: workshop.ID})
	return workshop, nil
}

func (s *workshopService) Delete(ctx context.Context, actor Actor, id string) error {
	workshop, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Role.CanManage(actor.UserID, workshop.TeacherID) {
		return ErrForbidden
	}

	if err := s.workshops.Delete(ctx, workshop.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkshopNotFound
		}
		return err
	}

	s.audit.Publish(ctx, events.Event{Type: events.WorkshopDeleted, ActorID: actor.UserID, Target: workshop.ID})
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if len(title) < minTitleLength || len(title) > maxTitleLength {
		return "", validationError("title", "must be between 3 and 255 characters")
	}
	return title, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if len(description) < minDescriptionLength || len(description) > maxDescriptionLength {
		return "", validationError("description", "must be between 10 and 1000 characters")
	}
	return description, nil
}

// validateDate accepts well-formed dates from today onwards.
func (s *workshopService) validateDate(value string) (models.Date, error) {
	date, err := parseDate(value)
	if err != nil {
		return models.Date{}, err
	}
	if err := s.checkNotPast(date); err != nil {
		return models.Date{}, err
	}
	return date, nil
}

func parseDate(value string) (models.Date, error) {
	date, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, validationError("date", "must be in YYYY-MM-DD format")
	}
	return date, nil
}

func (s *workshopService) checkNotPast(date models.Date) error {
	now := s.now().UTC()
	today := models.Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
	if date.Before(today) {
		return validationError("date", "cannot be in the past")
	}
	return nil
}
