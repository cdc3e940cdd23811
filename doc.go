// Package nfckiosk holds the shared application context and error taxonomy of the
// NFC attendance desk client.
//
// The kiosk authenticates a device operator, opens and closes a named attendance
// session against the remote service and records attendance by submitting scanned
// card UIDs while a session is active. Components live under svc/:
//
//   - svc/configstore persists the service base address and bearer token.
//   - svc/auth obtains or accepts the bearer credential.
//   - svc/session owns the current session (Idle ⇄ Active).
//   - svc/scan submits card UIDs and classifies the answer.
//   - svc/kiosk wires them together and renders status lines.
//
// # State
//
// Credential and Session are fields of a single State value created empty at
// startup and passed to every component:
//
//	state := nfckiosk.NewState()
//	authMgr := auth.NewManager(state, client, store)
//	sessions := session.NewController(state, client)
//
// # Errors
//
// Every failure wraps one of ErrValidation, ErrAuth, ErrNetwork, ErrAPI,
// ErrHardware or ErrState. Non-success answers are reported as *APIError:
//
//	if apiErr, ok := nfckiosk.AsAPIError(err); ok && apiErr.StatusCode == http.StatusForbidden {
//	    // ...
//	}
//
// StatusMessage turns any of them into a status line for the operator.
package nfckiosk
