package apiclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/nfckiosk/pkg/apiclient"
)

func TestParseMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want apiclient.Message
	}{
		{name: "structured", body: `{"message":"Card inactive","status":403}`, want: apiclient.Structured{Message: "Card inactive"}},
		{name: "structured empty message", body: `{"message":""}`, want: apiclient.Structured{Message: ""}},
		{name: "object without message", body: `{"error":"x"}`, want: apiclient.Raw{Body: `{"error":"x"}`}},
		{name: "message not a string", body: `{"message":42}`, want: apiclient.Raw{Body: `{"message":42}`}},
		{name: "plain text", body: "NFC card not found\n", want: apiclient.Raw{Body: "NFC card not found"}},
		{name: "json string", body: `"Already checked in"`, want: apiclient.Raw{Body: `"Already checked in"`}},
		{name: "empty", body: "", want: apiclient.Raw{Body: ""}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := apiclient.ParseMessage([]byte(tt.body))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Text(), got.Text())
		})
	}
}

func TestBodyText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Checked in successfully", apiclient.BodyText([]byte(`"Checked in successfully"`)))
	assert.Equal(t, "Checked in successfully", apiclient.BodyText([]byte("Checked in successfully")))
	assert.Equal(t, "Checked out", apiclient.BodyText([]byte(`{"message":"Checked out"}`)))
	assert.Equal(t, `"unterminated`, apiclient.BodyText([]byte(`"unterminated`)))
}
