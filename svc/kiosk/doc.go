// Package kiosk is the presentation boundary of the attendance desk.
//
// A Kiosk owns the application context (credential and current session) and
// the components working on it: auth.Manager, session.Controller and
// scan.Processor. Front ends call one method per operator intent and show
// the returned Status; no error ever escapes, and the kiosk stays usable after
// any failure.
//
//	store := configstore.New(settings.ConfigPath)
//	k, err := kiosk.Open(ctx, store, kiosk.WithReader(reader))
//	fmt.Println(k.StartSession(ctx, "Morning Lecture")) // Status: Session 'Morning Lecture' started.
//	fmt.Println(k.Scan(ctx, ""))                         // reads a card, then submits it
//
// Every operation runs under a fresh request id that is logged and sent as
// X-Request-ID, so kiosk and service log lines can be matched.
package kiosk
