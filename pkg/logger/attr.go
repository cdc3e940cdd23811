package logger

import (
	"log/slog"
	"strings"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Operation records the kiosk operation (login, start, end, scan).
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// SessionID records the attendance session identifier under the key "session_id".
func SessionID(id int64) slog.Attr {
	return slog.Int64("session_id", id)
}

// Purpose records the session purpose under the key "purpose".
func Purpose(p string) slog.Attr {
	return slog.String("purpose", p)
}

// CardUID records a card identifier with all but the last four characters masked.
func CardUID(uid string) slog.Attr {
	const visible = 4
	if len(uid) <= visible {
		return slog.String("card_uid", uid)
	}
	return slog.String("card_uid", strings.Repeat("*", len(uid)-visible)+uid[len(uid)-visible:])
}

// StatusCode records an HTTP status under the key "status_code".
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// Endpoint records method and path of an outbound request.
func Endpoint(method, path string) slog.Attr {
	return slog.String("endpoint", method+" "+path)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
