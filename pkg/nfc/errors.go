package nfc

import "errors"

var (
	// ErrNoReader is returned when no reader is configured or it cannot be opened.
	ErrNoReader = errors.New("nfc reader not available")
	// ErrNoTag is returned when the read completed without a tag identifier.
	ErrNoTag = errors.New("no nfc tag read")
	// ErrReadFailed is returned when the reader reported an error.
	ErrReadFailed = errors.New("nfc read failed")
	// ErrInvalidUID is returned when a reader delivered something that is not a hex identifier.
	ErrInvalidUID = errors.New("invalid tag identifier")
)
