package kiosk

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/nfckiosk"
)

// Status is the single line shown to the operator after every action.
type Status struct {
	Message string
	// Err is the failure behind an error status, nil for informational ones.
	Err error
}

// IsError reports whether the status describes a failure.
func (s Status) IsError() bool {
	return s.Err != nil
}

func (s Status) String() string {
	return "Status: " + s.Message
}

func info(format string, args ...any) Status {
	return Status{Message: fmt.Sprintf(format, args...)}
}

// failure renders err for the operator. prefix names the operation for
// service rejections, e.g. "Scan failed: 409 - Already checked in...".
func failure(prefix string, err error) Status {
	switch {
	case errors.Is(err, nfckiosk.ErrNoCredential):
		return Status{Message: "JWT Token not set.", Err: err}
	case errors.Is(err, nfckiosk.ErrNoActiveSession):
		return Status{Message: "Scan failed: No active session.", Err: err}
	}

	if apiErr, ok := nfckiosk.AsAPIError(err); ok && prefix != "" {
		msg := fmt.Sprintf("%s: %d", prefix, apiErr.StatusCode)
		if apiErr.Message != "" {
			msg += " - " + apiErr.Message
		}
		return Status{Message: msg, Err: err}
	}

	return Status{Message: nfckiosk.StatusMessage(err), Err: err}
}
