// Package apiclient is the HTTP transport the kiosk uses to talk to the
// attendance service.
//
// Client.Do sends one JSON request relative to the configured base address and
// returns the status and body, whatever the status. It sets Content-Type and
// Accept to application/json, the User-Agent, the bearer token when one is
// given, and X-Request-ID from the context (see pkg/requestid). Bodies are read
// up to 64KB.
//
// There are no retries, backoff or circuit breaking: each call is a single
// attempt and timeouts come from the underlying http.Client.
//
// # Errors
//
// Failures to reach the service wrap ErrTransport (timeouts additionally match
// ErrTimeout). Status codes are never turned into errors here; interpreting
// them is the caller's job. ParseMessage helps with that by returning either a
// Structured message or the Raw body.
//
//	c, err := apiclient.New("http://localhost:8080", apiclient.WithTimeout(5*time.Second))
//	resp, err := c.Do(ctx, apiclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/nfc/scan",
//	    Body:   map[string]string{"cardUid": "04A1B2C3"},
//	    Token:  token,
//	})
package apiclient
