package nfckiosk

import "fmt"

// Credential is the opaque bearer token authorizing device requests.
type Credential string

// IsSet reports whether a token is present.
func (c Credential) IsSet() bool {
	return c != ""
}

// BearerHeader returns the Authorization header value.
func (c Credential) BearerHeader() string {
	return "Bearer " + string(c)
}

// Session is the device-local mirror of a server-tracked attendance period.
type Session struct {
	ID      int64
	Purpose string
}

func (s Session) String() string {
	return fmt.Sprintf("%s (ID: %d)", s.Purpose, s.ID)
}

// State is the application context shared by the kiosk components.
// The zero value is ready to use: no credential, no session.
// Only the auth manager writes the credential and only the session controller
// writes the session. State is not safe for concurrent use; the kiosk runs one
// operation at a time.
type State struct {
	credential Credential
	session    *Session
}

// NewState creates an empty application context.
func NewState() *State {
	return &State{}
}

func (s *State) Credential() Credential {
	return s.credential
}

func (s *State) SetCredential(c Credential) {
	s.credential = c
}

// Session returns a copy of the held session, or nil when idle.
func (s *State) Session() *Session {
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// HasSession reports whether a session is held.
func (s *State) HasSession() bool {
	return s.session != nil
}

// SetSession replaces the held session. Identifier and purpose are stored together.
func (s *State) SetSession(sess Session) {
	s.session = &sess
}

// ClearSession drops the held session.
func (s *State) ClearSession() {
	s.session = nil
}
