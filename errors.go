package nfckiosk

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by every kiosk component.
// Each operation wraps one of these so callers can classify failures with errors.Is.
var (
	// ErrValidation is returned for missing or malformed local input. Never sent over the wire.
	ErrValidation = errors.New("validation failed")

	// ErrAuth is returned when the authentication endpoint rejects the credentials
	// or answers without a token.
	ErrAuth = errors.New("authentication failed")

	// ErrNetwork is returned for transport failures: connection refused, timeout, DNS.
	ErrNetwork = errors.New("network error")

	// ErrAPI is returned when the service is reachable but answers with a non-success status
	// or an unusable body.
	ErrAPI = errors.New("api error")

	// ErrHardware is returned when the tag read path is unavailable or failed.
	ErrHardware = errors.New("hardware error")

	// ErrState is returned when an operation is invalid for the current session state.
	ErrState = errors.New("invalid state")
)

// Specific failures, each wrapping one of the taxonomy sentinels.
var (
	ErrNoCredential    = fmt.Errorf("%w: credential is not set", ErrValidation)
	ErrNoActiveSession = fmt.Errorf("%w: no active session", ErrState)
	ErrSessionActive   = fmt.Errorf("%w: a session is already active", ErrState)
	ErrMissingToken    = fmt.Errorf("%w: response contains no token", ErrAuth)
	ErrInvalidResponse = fmt.Errorf("%w: invalid response data", ErrAPI)
)

// APIError carries a non-success answer from the remote service.
type APIError struct {
	StatusCode int
	// Message is the structured error message when the body carried one,
	// otherwise the raw body text.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Is makes every APIError match ErrAPI.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// NewAPIError creates an APIError for the given status and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: strings.TrimSpace(message)}
}

// AsAPIError extracts an APIError from the error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ErrorKind names a class of the error taxonomy.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindNetwork    ErrorKind = "network"
	KindAPI        ErrorKind = "api"
	KindHardware   ErrorKind = "hardware"
	KindState      ErrorKind = "state"
	KindUnknown    ErrorKind = "unknown"
)

// Kind classifies err. Auth wins over API because a rejected login carries both.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrState):
		return KindState
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrHardware):
		return KindHardware
	case errors.Is(err, ErrAPI):
		return KindAPI
	default:
		return KindUnknown
	}
}

// StatusMessage renders err as a single human-readable status line.
func StatusMessage(err error) string {
	if err == nil {
		return ""
	}

	if apiErr, ok := AsAPIError(err); ok {
		prefix := "Request failed"
		if Kind(err) == KindAuth {
			prefix = "Login failed"
		}
		if apiErr.Message == "" {
			return fmt.Sprintf("%s: %d", prefix, apiErr.StatusCode)
		}
		return fmt.Sprintf("%s: %d - %s", prefix, apiErr.StatusCode, apiErr.Message)
	}

	switch Kind(err) {
	case KindValidation:
		return "Invalid input: " + strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
	case KindState:
		return err.Error()
	case KindAuth:
		return "Login failed: " + err.Error()
	case KindNetwork:
		return "Connection error: " + err.Error()
	case KindHardware:
		return "NFC read error: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
