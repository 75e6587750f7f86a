package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Str0ng!pass", true},
		{"Aa1!aaaa", true},
		{"short1!", false},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoDigits!!aa", false},
		{"NoSpecial11aa", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidatePassword(tt.password), "password %q", tt.password)
	}
}

func TestIsHTTPSURL(t *testing.T) {
	assert.True(t, IsHTTPSURL("https://hooks.example.com/pay"))
	assert.False(t, IsHTTPSURL("http://hooks.example.com/pay"))
	assert.False(t, IsHTTPSURL("hooks.example.com"))
	assert.False(t, IsHTTPSURL(""))
}

func TestStructValidation(t *testing.T) {
	type payload struct {
		Email  string `validate:"required,email"`
		Amount int64  `validate:"required,gt=0"`
	}

	assert.NoError(t, Struct(payload{Email: "a@b.co", Amount: 100}))

	err := Struct(payload{Email: "nope", Amount: 0})
	assert.Error(t, err)
	assert.NotEmpty(t, Message(err))
}
