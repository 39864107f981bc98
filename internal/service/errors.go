package service

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError indicates a missing or unusable credential. It is fatal
// and never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// TransientAPIError is a rate-limit or quota failure from the generation API.
// The retry loop backs off and tries again.
type TransientAPIError struct {
	StatusCode int
	Message    string
}

func (e *TransientAPIError) Error() string {
	return fmt.Sprintf("transient API error (status %d): %s", e.StatusCode, e.Message)
}

// NonRetryableAPIError is any generation API failure that retrying cannot
// fix: invalid credential detected mid-call, unknown model, bad request.
type NonRetryableAPIError struct {
	StatusCode int
	Message    string
}

func (e *NonRetryableAPIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// EmptyResponseError indicates the API responded without any extractable
// text. Treated as transient.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string {
	return "no content generated"
}

// RecipeParseError indicates the raw generated text did not contain a
// parseable JSON payload. Raw carries the offending text for diagnostics.
type RecipeParseError struct {
	Raw string
	Err error
}

func (e *RecipeParseError) Error() string {
	if e.Err != nil {
		return "failed to parse recipe response: " + e.Err.Error()
	}
	return "failed to parse recipe response"
}

func (e *RecipeParseError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the retry loop should attempt the request
// again. Classification happens at the transport boundary where HTTP status
// codes are available; the message-substring check is a fallback for errors
// that carry no status (network failures wrapped by the HTTP client).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var transient *TransientAPIError
	if errors.As(err, &transient) {
		return true
	}
	var empty *EmptyResponseError
	if errors.As(err, &empty) {
		return true
	}
	var nonRetryable *NonRetryableAPIError
	if errors.As(err, &nonRetryable) {
		return false
	}
	var configErr *ConfigurationError
	if errors.As(err, &configErr) {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate")
}
