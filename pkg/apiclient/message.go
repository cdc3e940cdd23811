package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Message is the human-readable content of a response body: either Structured,
// taken from a JSON object's "message" field, or Raw, the body text itself.
// Which one is decided by a parse attempt.
type Message interface {
	Text() string
	isMessage()
}

// Structured is a message extracted from a JSON body of the form {"message": "..."}.
type Structured struct {
	Message string
}

func (m Structured) Text() string { return m.Message }
func (Structured) isMessage()     {}

// Raw is an unparsed body.
type Raw struct {
	Body string
}

func (m Raw) Text() string { return m.Body }
func (Raw) isMessage()     {}

// ParseMessage returns Structured when body is a JSON object with a string
// "message" field, otherwise Raw with the trimmed body text.
func ParseMessage(body []byte) Message {
	var payload struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != nil {
		return Structured{Message: *payload.Message}
	}
	return Raw{Body: strings.TrimSpace(string(body))}
}

// BodyText renders a success body for display: a JSON string literal is
// unquoted, otherwise it behaves like ParseMessage.
func BodyText(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return ParseMessage(body).Text()
}
