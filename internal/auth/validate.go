package auth

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// PasswordRequirements describes the rule enforced by ValidatePassword.
const PasswordRequirements = "Password must be at least 8 characters long and contain at least one letter, one number, and one symbol."

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// ValidationError reports rejected user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return strongPassword(fl.Field().String())
		})
	})
	return validate
}

func strongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var letter, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return letter && digit && symbol
}

// ValidateEmail checks that email is a well-formed address.
func ValidateEmail(email string) error {
	if err := validatorInstance().Var(email, "required,email"); err != nil {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address."}
	}
	return nil
}

// ValidatePassword checks password against PasswordRequirements.
func ValidatePassword(password string) error {
	if err := validatorInstance().Var(password, "required,strongpassword"); err != nil {
		return &ValidationError{Field: "password", Message: PasswordRequirements}
	}
	return nil
}
