package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "test@example.com"},
		{name: "valid email with subdomain", email: "user@mail.example.com"},
		{name: "valid email with plus", email: "user+tag@example.com"},
		{name: "surrounding spaces", email: "  a@x.com "},
		{name: "missing @", email: "testexample.com", wantErr: true},
		{name: "missing domain", email: "test@", wantErr: true},
		{name: "missing local part", email: "@example.com", wantErr: true},
		{name: "empty string", email: "", wantErr: true},
		{name: "spaces in email", email: "test @example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid name", input: "Mia"},
		{name: "single letter", input: "J"},
		{name: "name with apostrophe", input: "O'Brien"},
		{name: "empty name", input: "", wantErr: true},
		{name: "blank name", input: "   ", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxNameLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("name", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorFields(t *testing.T) {
	err := ValidateName("firstName", "")
	var verr ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "firstName", verr.Field)
	assert.Equal(t, "firstName: firstName is required", err.Error())

	assert.Error(t, ValidatePassword(""))
	assert.NoError(t, ValidatePassword("x"))
	assert.NoError(t, ValidateClock(23, 59))
	assert.Error(t, ValidateClock(24, 0))
	assert.Error(t, ValidateClock(0, -1))
}
