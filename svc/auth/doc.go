// Package auth manages the kiosk's bearer credential.
//
// A credential is either typed in by the operator (SetToken) or obtained by
// exchanging a username and password at the service (Login). Both paths end in
// the same place: the credential is written into the shared nfckiosk.State and
// the configuration record is saved so the token survives a restart.
//
// Claims decodes the subject and expiry of a JWT credential for display. The
// signature is not verified and an expired token is only logged; the service
// decides whether a token is acceptable.
package auth
