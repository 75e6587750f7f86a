package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHTTP(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 is auth",
			status: 401,
			check: func(t *testing.T, err error) {
				var target *AuthError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:   "403 is auth",
			status: 403,
			check: func(t *testing.T, err error) {
				var target *AuthError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:   "404 is not found",
			status: 404,
			check: func(t *testing.T, err error) {
				var target *NotFoundError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:   "402 is decline",
			status: 402,
			check: func(t *testing.T, err error) {
				var target *DeclineError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:   "409 is decline",
			status: 409,
			check: func(t *testing.T, err error) {
				var target *DeclineError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:   "500 is network",
			status: 500,
			check: func(t *testing.T, err error) {
				var target *NetworkError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:   "422 is validation",
			status: 422,
			check: func(t *testing.T, err error) {
				var target *ValidationError
				assert.True(t, errors.As(err, &target))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ClassifyHTTP("test", tt.status, "body"))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&NetworkError{Provider: "p", Err: errors.New("boom")}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &NetworkError{Provider: "p"})))

	assert.False(t, IsRetryable(&AuthError{Provider: "p", Err: errors.New("denied")}))
	assert.False(t, IsRetryable(&ValidationError{Provider: "p", Message: "bad"}))
	assert.False(t, IsRetryable(&DeclineError{Provider: "p", Reason: "frozen"}))
	assert.False(t, IsRetryable(&NotFoundError{Provider: "p", Resource: "card", ID: "x"}))
	assert.False(t, IsRetryable(errors.New("plain")))
}
