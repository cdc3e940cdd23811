// Package scan records attendance by submitting card identifiers.
//
// Submit refuses to do anything, including touching the NFC reader, unless a
// session is held. The request carries only the card identifier; the service
// resolves which session it belongs to. A 201 answer is a check-in, a 200
// answer a check-out, and the service's message is returned verbatim for
// display. Every other status becomes an *nfckiosk.APIError whose message is
// the structured "message" field when the body has one and the raw body
// otherwise. Nothing is retried.
package scan
