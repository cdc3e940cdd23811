package apiclient

import (
	"errors"
	"fmt"
)

// Transport failures wrap ErrTransport; everything else is a local mistake.
var (
	ErrTransport      = errors.New("transport failure")
	ErrTimeout        = fmt.Errorf("%w: request timeout", ErrTransport)
	ErrInvalidURL     = errors.New("invalid service URL")
	ErrInvalidPayload = errors.New("invalid request payload")
	ErrInvalidRequest = errors.New("invalid request")
	ErrDecodeResponse = errors.New("failed to decode response")
)

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
