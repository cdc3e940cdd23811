package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required size of the sealing key.
	KeySize = 32

	// hkdfInfo provides domain separation for derived keys.
	hkdfInfo = "nfckiosk-config-token-v1"
)

// deriveKey derives the AES-256 key from the configured key and a per-device salt.
// The caller clears the returned slice.
func deriveKey(key, salt []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	r := hkdf.New(sha256.New, key, salt, []byte(hkdfInfo))
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(r, derived); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return derived, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey creates a random key suitable for Seal.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
