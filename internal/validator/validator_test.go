package validator_test

import (
	"testing"

	"opsdesk/internal/validator"

	"github.com/stretchr/testify/assert"
)

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password_strength"`
}

type leadForm struct {
	Name  string `validate:"required"`
	Phone string `validate:"required,in_phone"`
	City  string `validate:"required"`
}

func TestPasswordStrength(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "strong", password: "Str0ngpass", valid: true},
		{name: "too_short", password: "Ab1", valid: false},
		{name: "no_upper", password: "weakpass1", valid: false},
		{name: "no_digit", password: "Weakpassword", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(loginForm{Email: "a@b.in", Password: tt.password})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIndianPhone(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{name: "valid_mobile", phone: "9820012345", valid: true},
		{name: "starts_below_six", phone: "1820012345", valid: false},
		{name: "too_short", phone: "98200", valid: false},
		{name: "with_country_code", phone: "+919820012345", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(leadForm{Name: "x", Phone: tt.phone, City: "Mumbai"})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
