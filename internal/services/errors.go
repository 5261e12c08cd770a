package services

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"

	"github.com/desertthunder/filmhub/internal/shared"
)

// conflictPhrase marks a create-rating failure that should fall back to an update.
const conflictPhrase = "already exists"

// APIError is a non-2xx response from the API. Error returns the user-facing message.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// IsRatingExists reports whether err is an API failure whose message says the rating already exists.
// The match is a case-sensitive substring check.
func IsRatingExists(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, conflictPhrase)
}

// failureBody is the error payload shape the API returns on failed writes.
type failureBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// parseFailure decodes an error payload. Unreadable bodies yield the zero value.
func parseFailure(body []byte) failureBody {
	var f failureBody
	_ = json.Unmarshal(body, &f)
	return f
}

// newAPIError builds an [*APIError] using the first non-empty message, falling back to def.
func newAPIError(op string, status int, def string, candidates ...string) *APIError {
	for _, c := range candidates {
		if c != "" {
			return &APIError{Op: op, Status: status, Message: c}
		}
	}
	return &APIError{Op: op, Status: status, Message: def}
}
