package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/filmhub/internal/shared"
)

// LoginResponse is the decoded body of POST /login/, whatever the HTTP status.
type LoginResponse struct {
	Token          string       `json:"token,omitempty"`
	User           *UserSummary `json:"user,omitempty"`
	Error          string       `json:"error,omitempty"`
	Detail         string       `json:"detail,omitempty"`
	NonFieldErrors []string     `json:"non_field_errors,omitempty"`
}

// Err reports a failed login. A body without a token is a failure even when it carries no message.
func (r *LoginResponse) Err() error {
	if msg := serverMessage(r.Error, r.Detail, r.NonFieldErrors); msg != "" {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	}
	if r.Token == "" {
		return fmt.Errorf("%w: no token in response", shared.ErrAuthFailed)
	}
	return nil
}

// Session converts a successful login into session credentials.
// The username is used when the server omits the user object.
func (r *LoginResponse) Session(username string) Session {
	user := r.User
	if user == nil {
		user = &UserSummary{Username: username}
	}
	return Session{User: user, Token: r.Token}
}

// RegisterResponse is the decoded body of POST /register/, whatever the HTTP status.
// Per-field validation errors arrive as string lists under the field name.
type RegisterResponse struct {
	Message        string       `json:"message,omitempty"`
	Token          string       `json:"token,omitempty"`
	User           *UserSummary `json:"user,omitempty"`
	Error          string       `json:"error,omitempty"`
	Detail         string       `json:"detail,omitempty"`
	NonFieldErrors []string     `json:"non_field_errors,omitempty"`
	Username       []string     `json:"username,omitempty"`
	Email          []string     `json:"email,omitempty"`
	Password       []string     `json:"password,omitempty"`
}

// Err reports a failed registration.
func (r *RegisterResponse) Err() error {
	if msg := serverMessage(r.Error, r.Detail, r.NonFieldErrors); msg != "" {
		return fmt.Errorf("%w: %s", shared.ErrRegisterFailed, msg)
	}

	var parts []string
	for _, f := range []struct {
		name string
		errs []string
	}{{"username", r.Username}, {"email", r.Email}, {"password", r.Password}} {
		if len(f.errs) > 0 {
			parts = append(parts, f.name+": "+strings.Join(f.errs, " "))
		}
	}

	if len(parts) > 0 {
		return fmt.Errorf("%w: %s", shared.ErrRegisterFailed, strings.Join(parts, "; "))
	}
	return nil
}

// CollectionAck is the decoded body returned when a movie is added to the watch list or watched set.
type CollectionAck map[string]any

// Message returns the server's message or status field, if any.
func (a CollectionAck) Message() string {
	for _, key := range []string{"message", "status", "detail"} {
		if s, ok := a[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func serverMessage(errField, detail string, nonField []string) string {
	switch {
	case errField != "":
		return errField
	case detail != "":
		return detail
	case len(nonField) > 0:
		return strings.Join(nonField, " ")
	default:
		return ""
	}
}
