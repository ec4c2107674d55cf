package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoRefreshToken is returned when renewal is attempted with no refresh token stored.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrRenewalRejected is returned when the server refuses the refresh token.
	// The stored session has been cleared by the time this is returned.
	ErrRenewalRejected = errors.New("session renewal rejected")

	// ErrProtectedPermission is returned when an edit would revoke the
	// administrator's ability to manage roles.
	ErrProtectedPermission = errors.New("ADMIN cannot lose MANAGE_ROLES")

	// ErrUnknownRole is returned when a role code is not part of the matrix.
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownResource is returned when a menu or board id is not part of the matrix.
	ErrUnknownResource = errors.New("unknown resource")
)

// CodeResourceInUse is the structured error code for a delete rejected because
// other records still depend on the target.
const CodeResourceInUse = "resource_in_use"

// ErrorKind classifies a failed API call.
type ErrorKind int

const (
	// KindAuthExpired marks a 401 that survived renewal; the session is over.
	KindAuthExpired ErrorKind = iota + 1
	// KindValidation marks a 4xx business-rule rejection.
	KindValidation
	// KindServer marks a 5xx response.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthExpired:
		return "auth_expired"
	case KindValidation:
		return "validation_failure"
	case KindServer:
		return "server_failure"
	default:
		return "unknown"
	}
}

// APIError is a non-success response from the board API.
type APIError struct {
	Status  int
	Message string
	Code    string
	Kind    ErrorKind
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError wraps network failures and undecodable success bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsSessionEnded reports whether err means the caller must treat the session
// as terminated (original 401 after a failed or skipped renewal).
func IsSessionEnded(err error) bool {
	if errors.Is(err, ErrNoRefreshToken) || errors.Is(err, ErrRenewalRejected) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuthExpired
}

// IsResourceInUse reports whether err is a delete rejected because the target
// still has dependents.
func IsResourceInUse(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeResourceInUse || apiErr.Status == http.StatusConflict
}

func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthExpired
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}
