package ayuutoclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrSessionExpired means the stored session is no longer accepted. The
// caller should clear the session and ask the user to log in again.
var ErrSessionExpired = errors.New("session expired, please log in again")

// ErrNotLoggedIn is returned by token sources when no session is stored
var ErrNotLoggedIn = errors.New("not logged in")

// authExpiredHints are message fragments the backend uses for rejected
// or expired tokens
var authExpiredHints = []string{
	"not authorized",
	"unauthorized",
	"expired",
	"invalid token",
	"jwt malformed",
}

// TransportError is a network failure: the request never got a response
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is an error reported by the backend, either through
// success:false or a non-2xx status, or a response that could not be read
type APIError struct {
	Status  int
	Message string
	expired bool
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Is lets errors.Is(err, ErrSessionExpired) match auth failures
func (e *APIError) Is(target error) bool {
	return target == ErrSessionExpired && e.expired
}

func newAPIError(status int, message string, auth bool) *APIError {
	if message == "" {
		message = "request failed"
	}
	return &APIError{
		Status:  status,
		Message: message,
		expired: auth && (status == http.StatusUnauthorized || looksLikeAuthExpiry(message)),
	}
}

func looksLikeAuthExpiry(message string) bool {
	lower := strings.ToLower(message)
	for _, hint := range authExpiredHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// IsAuthExpired reports whether err means the session must be cleared
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNotLoggedIn)
}

// IsTransport reports whether err is a network failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
