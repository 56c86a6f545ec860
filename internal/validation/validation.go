// Package validation checks user input before it reaches the store.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// MaxNameLength bounds names of parents and children
const MaxNameLength = 80

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword only requires a password to be present; local accounts
// have no strength policy.
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidateName checks a required name field
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	if len([]rune(name)) > MaxNameLength {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, MaxNameLength)}
	}
	return nil
}

// ValidateClock checks an hour/minute pair used for time corrections
func ValidateClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return ValidationError{Field: "hour", Message: "hour must be between 0 and 23"}
	}
	if minute < 0 || minute > 59 {
		return ValidationError{Field: "minute", Message: "minute must be between 0 and 59"}
	}
	return nil
}
