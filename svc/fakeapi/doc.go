// Package fakeapi is an in-memory stand-in for the attendance service, used
// to develop and test the kiosk without the real backend.
//
// It serves the four endpoints the kiosk talks to with the same status codes
// and messages as the production service:
//
//	POST /admin/authenticate      {username,password} -> 200 {jwt} | 401
//	POST /entity/sessions         {name} -> 201 {id,name,startTime}
//	PUT  /entity/sessions/{id}/end        -> 200 | 400 already ended | 404
//	POST /nfc/scan                {cardUid} -> 201 check-in | 200 check-out | 409 | 403 | 404 | 400
//
// Scans are matched to the most recently started open session, the first tap
// of a card checks in, the second checks out and any further tap is a
// conflict. Tokens are HS256 JWTs; every endpoint except authentication
// requires one.
package fakeapi
