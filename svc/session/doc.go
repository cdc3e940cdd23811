// Package session drives the attendance session lifecycle of the kiosk.
//
// The Controller is a guarded state machine with two states, StateIdle and
// StateActive, and two events. Start moves Idle to Active once the service
// has created the session and answered with its identifier; End moves Active
// back to Idle once the service has accepted the end request. Guards check the
// credential and the purpose before any request is sent, and the held session
// in nfckiosk.State is written only after the remote call succeeded, so a
// failed transition never leaves partial state behind.
//
//	ctrl := session.NewController(state, client)
//	sess, err := ctrl.Start(ctx, "Morning Lecture") // Active, sess.ID == 42
//	ended, err := ctrl.End(ctx)                     // Idle
//
// End while idle is not an error: nothing is sent and End returns nil, nil.
package session
