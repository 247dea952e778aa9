package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const (
	minPasswordLength = 6
	// bcrypt.GenerateFromPassword rejects anything longer.
	maxPasswordBytes = 72
	maxNameLength    = 50
)

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// validateCredentials checks a login pair.
func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.Validation("please enter email and password")
	}
	if !validEmail(email) {
		return domain.Validation("please enter a valid email")
	}
	return nil
}

// validateRegistration checks the registration fields in the order the
// client is most likely to fix them.
func validateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return domain.Validation("please enter all the fields")
	}
	if len([]rune(name)) > maxNameLength {
		return domain.Validationf("your name cannot exceed %d characters", maxNameLength)
	}
	if !validEmail(email) {
		return domain.Validation("please enter a valid email")
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.Validationf("password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return domain.Validationf("password cannot exceed %d bytes", maxPasswordBytes)
	}
	return nil
}

func validateProfile(name, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return domain.Validation("please enter name and email")
	}
	if len([]rune(name)) > maxNameLength {
		return domain.Validationf("your name cannot exceed %d characters", maxNameLength)
	}
	if !validEmail(email) {
		return domain.Validation("please enter a valid email")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
