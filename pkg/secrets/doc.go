// Package secrets seals short strings, such as the kiosk's bearer token, for
// storage in the local config file.
//
// Seal derives an AES-256 key with HKDF-SHA256 from the configured 32-byte key
// and a salt (the device id), encrypts with AES-GCM and returns a printable
// "sealed:v1:<base64>" value. Open reverses it; a wrong key, salt or tampered
// value yields ErrDecryptionFailed.
//
//	sealed, err := secrets.Seal(key, []byte(deviceID), token)
//	token, err := secrets.Open(key, []byte(deviceID), sealed)
package secrets
