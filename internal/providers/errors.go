package providers

import (
	"errors"
	"fmt"
	"net"
)

// AuthError signals a provider login or token failure. Callers retry the
// authentication once, then treat it as fatal.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError signals a request the provider rejected as malformed.
// Never retried; the message is safe to surface to the caller.
type ValidationError struct {
	Provider string
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// DeclineError signals a business decline (card frozen, insufficient funds,
// fraud block). Never retried; Reason carries the provider-supplied text.
type DeclineError struct {
	Provider string
	Code     string
	Reason   string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("%s: declined (%s): %s", e.Provider, e.Code, e.Reason)
}

// NotFoundError signals a missing resource at the provider.
type NotFoundError struct {
	Provider string
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %s not found", e.Provider, e.Resource, e.ID)
}

// NetworkError wraps transport failures, timeouts and 5xx responses.
// Always retryable within the bounded retry budget.
type NetworkError struct {
	Provider string
	Err      error
	Timeout  bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsRetryable reports whether a provider call may be attempted again.
// Only transport-level failures qualify; 4xx-class errors never do.
func IsRetryable(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// WrapTransport classifies a transport error from the http client.
func WrapTransport(provider string, err error) error {
	var netErr net.Error
	timeout := errors.As(err, &netErr) && netErr.Timeout()
	return &NetworkError{Provider: provider, Err: err, Timeout: timeout}
}

// ClassifyHTTP maps a non-2xx status to the error taxonomy. body is the
// provider-supplied message, surfaced verbatim for 4xx per the API contract.
func ClassifyHTTP(provider string, status int, body string) error {
	switch {
	case status == 401 || status == 403:
		return &AuthError{Provider: provider, Err: fmt.Errorf("status %d: %s", status, body)}
	case status == 404:
		return &NotFoundError{Provider: provider, Resource: "resource", ID: body}
	case status == 402 || status == 409:
		return &DeclineError{Provider: provider, Code: fmt.Sprintf("http_%d", status), Reason: body}
	case status >= 500:
		return &NetworkError{Provider: provider, Err: fmt.Errorf("status %d: %s", status, body)}
	default:
		return &ValidationError{Provider: provider, Message: body}
	}
}
