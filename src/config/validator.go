package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterValidation("storage_backend", validateStorageBackend)
	v.RegisterValidation("log_level", validateLogLevel)

	return &Validator{validate: v}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	if err := v.validate.Struct(config); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				return fmt.Errorf("invalid value for %s: failed on '%s'", e.Field(), e.Tag())
			}
		}
		return err
	}
	return nil
}

func validateStorageBackend(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "sqlite", "file":
		return true
	}
	return false
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
