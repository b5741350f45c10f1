package goDash

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCredentialRejected reports a 401 from a protected call. The request
	// pipeline has already ended the session when the caller sees it.
	ErrCredentialRejected = errors.New("credential rejected")
	// ErrLoginFailed reports that the login endpoint refused the submitted
	// credentials. The session is left untouched.
	ErrLoginFailed = errors.New("login failed")
	// ErrNetworkFailure reports a transport-level failure (no response).
	ErrNetworkFailure = errors.New("network failure")
	// ErrUnexpectedResponse reports a non-2xx status other than 401, or a body
	// that could not be decoded.
	ErrUnexpectedResponse = errors.New("unexpected api response")
	// ErrTokenRequired is returned by Login for an empty token.
	ErrTokenRequired = errors.New("token required")
	// ErrIdentityRequired is returned by Login for a nil identity.
	ErrIdentityRequired = errors.New("identity required")
	// ErrStoreUnavailable wraps persistent session store failures.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrManagerNotReady is returned by methods called on a nil Manager.
	ErrManagerNotReady = errors.New("session manager not initialized")
)

// StatusError carries the HTTP status of a failed API call. It unwraps to
// [ErrCredentialRejected], [ErrLoginFailed] or [ErrUnexpectedResponse].
type StatusError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %d %s: %s", e.Err, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%v: %d %s", e.Err, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewStatusError classifies status into the matching sentinel.
func NewStatusError(status int, message string) *StatusError {
	err := ErrUnexpectedResponse
	if status == http.StatusUnauthorized {
		err = ErrCredentialRejected
	}
	return &StatusError{StatusCode: status, Message: message, Err: err}
}
