// Package validation wraps the shared validator instance and the handful of
// custom rules the API needs.
package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	return v
}

// Struct validates a tagged struct and returns the first problem as a
// human-readable message.
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// Message flattens a validator error into one line safe for API responses.
func Message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag()+" validation")
	}
	return strings.Join(parts, "; ")
}

// IsHTTPSURL reports whether raw is an absolute https URL. Webhook targets
// must be https so signed payloads never travel in clear.
func IsHTTPSURL(raw string) bool {
	return validate.Var(raw, "required,url,startswith=https://") == nil
}

// ValidatePassword enforces the password policy: minimum 8 characters with at
// least one upper, one lower, one digit and one special character.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}
