// Package nfc is the kiosk's hardware read path: a single blocking "read one
// tag" operation returning the tag identifier as hex.
//
// Reader.ReadUID acquires the device through an Opener, performs one read and
// releases the device in a defer, so a failed read never leaves the reader
// held. Driver internals stay behind the Device interface; LineDevice covers
// readers that deliver identifiers as text lines (keyboard-wedge USB readers,
// serial readers, or the operator typing on the console).
//
//	reader := nfc.NewReader(nfc.DeviceFile("/dev/ttyUSB0"))
//	uid, err := reader.ReadUID(ctx) // "04A1B2C3"
//
// Failures are reported as ErrNoReader, ErrNoTag, ErrReadFailed or
// ErrInvalidUID; callers treat them all as one hardware error.
package nfc
