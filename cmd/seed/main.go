// Command seed creates a user, or resets the password of an existing one.
//
//	seed -email admin@example.com -password s3cret -name Admin -role admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/internal/config"
	"github.com/GunarsK-portfolio/workshop-planner/internal/database"
	"github.com/GunarsK-portfolio/workshop-planner/internal/logger"
	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/GunarsK-portfolio/workshop-planner/internal/repository"
	"github.com/GunarsK-portfolio/workshop-planner/internal/service"
	"github.com/google/uuid"
)

const minPasswordLength = 6

type seedOptions struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

type passwordHasher interface {
	HashPassword(plaintext string) (string, error)
}

func main() {
	var (
		name     = flag.String("name", "", "display name (defaults to the email's local part)")
		email    = flag.String("email", "", "email address (required)")
		password = flag.String("password", "", "password (required)")
		role     = flag.String("role", string(models.RoleTeacher), "teacher or admin")
	)
	flag.Parse()

	opts := seedOptions{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     models.Role(*role),
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(opts seedOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(os.Stdout, cfg.Environment, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		TimeZone: "UTC",
	})
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	credentials := service.NewCredentialStore(users, repository.NewLoginAttemptRepository(db), cfg.BcryptCost)

	user, created, err := seedUser(ctx, users, credentials, opts)
	if err != nil {
		return err
	}
	if created {
		log.Info("User created", "id", user.ID, "email", user.Email, "role", user.Role)
	} else {
		log.Info("Password updated", "id", user.ID, "email", user.Email)
	}
	return nil
}

func (o *seedOptions) validate() error {
	o.Email = service.NormalizeEmail(o.Email)
	local, domain, ok := strings.Cut(o.Email, "@")
	if !ok || local == "" || domain == "" {
		return errors.New("-email must be a valid address")
	}
	if len(o.Password) < minPasswordLength {
		return fmt.Errorf("-password must be at least %d characters", minPasswordLength)
	}
	if !o.Role.Valid() {
		return fmt.Errorf("-role must be %q or %q", models.RoleTeacher, models.RoleAdmin)
	}
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		o.Name = local
	}
	return nil
}

// seedUser creates the user, or updates the password when the email is
// already registered. The existing role is left as is.
func seedUser(ctx context.Context, users repository.UserRepository, hasher passwordHasher, opts seedOptions) (*models.User, bool, error) {
	hash, err := hasher.HashPassword(opts.Password)
	if err != nil {
		return nil, false, err
	}

	existing, err := users.FindByEmail(ctx, opts.Email)
	switch {
	case err == nil:
		if err := users.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case !repository.IsNotFound(err):
		return nil, false, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         opts.Name,
		Email:        opts.Email,
		PasswordHash: hash,
		Role:         opts.Role,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
