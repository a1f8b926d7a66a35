package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/contextiq/contextiq-cli/internal/api"
)

// Reason classifies an AuthError.
type Reason string

const (
	ReasonInvalidCredentials   Reason = "invalid_credentials"
	ReasonRegistrationConflict Reason = "registration_conflict"
	ReasonInvalidInput         Reason = "invalid_input"
	ReasonNetworkFailure       Reason = "network_failure"
	ReasonServerError          Reason = "server_error"
)

// AuthError is returned by Login and Register.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	var what string
	switch e.Reason {
	case ReasonInvalidCredentials:
		what = "invalid email or password"
	case ReasonRegistrationConflict:
		what = "an account with this email already exists"
	case ReasonInvalidInput:
		what = "invalid input"
	case ReasonNetworkFailure:
		what = "auth service unreachable"
	default:
		what = "auth service error"
	}
	if e.Err == nil {
		return what
	}
	return fmt.Sprintf("%s: %v", what, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsReason reports whether err is an AuthError with the given reason.
func IsReason(err error, r Reason) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Reason == r
}

func classifyLoginError(err error) *AuthError {
	if isNetwork(err) {
		return &AuthError{Reason: ReasonNetworkFailure, Err: err}
	}
	var unauth *api.UnauthorizedError
	if errors.As(err, &unauth) {
		return &AuthError{Reason: ReasonInvalidCredentials, Err: err}
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		return &AuthError{Reason: ReasonInvalidCredentials, Err: err}
	}
	return &AuthError{Reason: ReasonServerError, Err: err}
}

func classifyRegisterError(err error) *AuthError {
	if isNetwork(err) {
		return &AuthError{Reason: ReasonNetworkFailure, Err: err}
	}
	var conflict *api.ConflictError
	if errors.As(err, &conflict) {
		return &AuthError{Reason: ReasonRegistrationConflict, Err: err}
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		if strings.Contains(strings.ToLower(apiErr.Message), "already") {
			return &AuthError{Reason: ReasonRegistrationConflict, Err: err}
		}
		return &AuthError{Reason: ReasonInvalidInput, Err: err}
	}
	return &AuthError{Reason: ReasonServerError, Err: err}
}

func isNetwork(err error) bool {
	var ue *api.UnreachableError
	return errors.As(err, &ue) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
