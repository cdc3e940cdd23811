package configstore

import "errors"

var (
	ErrReadConfig    = errors.New("failed to read config file")
	ErrWriteConfig   = errors.New("failed to write config file")
	ErrDecodeConfig  = errors.New("failed to decode config file")
	ErrInvalidRecord = errors.New("invalid config record")
	// ErrSealedToken is returned when the stored token is sealed and no key is configured.
	ErrSealedToken = errors.New("stored token is sealed but no config key is set")
	ErrUnsealToken = errors.New("failed to unseal stored token")
)
