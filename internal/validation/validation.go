// Package validation registers the custom binding rules used by request DTOs.
package validation

import (
	"fmt"

	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register adds the "subject" and "isodate" rules to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("subject", validateSubject); err != nil {
		return fmt.Errorf("failed to register subject rule: %w", err)
	}
	if err := v.RegisterValidation("isodate", validateISODate); err != nil {
		return fmt.Errorf("failed to register isodate rule: %w", err)
	}
	return nil
}

// RegisterWithGin installs the rules on gin's default validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

func validateSubject(fl validator.FieldLevel) bool {
	return models.Subject(fl.Field().String()).Valid()
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}
