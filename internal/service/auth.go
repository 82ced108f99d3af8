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

const minPasswordLength = 6

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Login(ctx context.Context, email, password, source string) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
	Logout(ctx context.Context, userID string)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	Authenticate(token string) (*Claims, error)
	TokenTTL() time.Duration
}

type authService struct {
	users       repository.UserRepository
	credentials CredentialStore
	limiter     RateLimiter
	tokens      TokenCodec
	audit       events.Publisher
}

func NewAuthService(
	users repository.UserRepository,
	credentials CredentialStore,
	limiter RateLimiter,
	tokens TokenCodec,
	audit events.Publisher,
) AuthService {
	if audit == nil {
		audit = events.NewNoopPublisher()
	}
	return &authService{
		users:       users,
		credentials: credentials,
		limiter:     limiter,
		tokens:      tokens,
		audit:       audit,
	}
}

// Login checks the rate limit, records the attempt and verifies the
// password before issuing a token. Throttled attempts are recorded too.
func (s *authService) Login(ctx context.Context, email, password, source string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		return nil, err
	}
	if !allowed {
		if err := s.credentials.RecordAttempt(ctx, email, source, false); err != nil {
			return nil, err
		}
		s.audit.Publish(ctx, events.Event{Type: events.LoginThrottled, Target: email, Attributes: map[string]string{"source": source}})
		return nil, ErrRateLimited
	}

	user, err := s.credentials.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrInvalidCredentials) {
		return nil, err
	}

	// Unknown emails still run a comparison against an empty hash.
	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	matched := s.credentials.VerifyPassword(password, hash)
	succeeded := user != nil && matched
	if err := s.credentials.RecordAttempt(ctx, email, source, succeeded); err != nil {
		return nil, err
	}
	if !succeeded {
		s.audit.Publish(ctx, events.Event{Type: events.LoginFailed, Target: email, Attributes: map[string]string{"source": source}})
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.audit.Publish(ctx, events.Event{Type: events.LoginSucceeded, ActorID: user.ID, Target: email})
	return result, nil
}

// Register creates a teacher account and logs it in.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := NormalizeEmail(req.Email)
	if len(name) < 2 {
		return nil, validationError("name", "must be at least 2 characters long")
	}
	if email == "" {
		return nil, validationError("email", "is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, validationError("password", "must be at least 6 characters long")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	hash, err := s.credentials.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleTeacher,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.audit.Publish(ctx, events.Event{Type: events.UserRegistered, ActorID: user.ID, Target: email})
	return result, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return validationError("new_password", "must be at least 6 characters long")
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.credentials.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.credentials.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.audit.Publish(ctx, events.Event{Type: events.PasswordChanged, ActorID: user.ID})
	return nil
}

// Logout records the end of a session. The token itself stays valid until
// it expires.
func (s *authService) Logout(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	s.audit.Publish(ctx, events.Event{Type: events.UserLoggedOut, ActorID: userID})
}

// CurrentUser loads the user a token refers to. A token for a deleted
// user is treated as invalid.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Authenticate(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}
	return s.tokens.Decode(token)
}

func (s *authService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Encode(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
