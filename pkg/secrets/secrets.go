package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// SealedPrefix marks a value produced by Seal. The version lets the format change later.
const SealedPrefix = "sealed:v1:"

// IsSealed reports whether s was produced by Seal.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, SealedPrefix)
}

// Seal encrypts plaintext with AES-256-GCM under a key derived from key and salt.
// The result is SealedPrefix followed by base64(nonce + ciphertext + tag).
func Seal(key, salt []byte, plaintext string) (string, error) {
	aead, err := newAEAD(key, salt)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	ciphertext := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal. The same key and salt must be supplied.
func Open(key, salt []byte, sealed string) (string, error) {
	if !IsSealed(sealed) {
		return "", ErrInvalidCiphertext
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}

	aead, err := newAEAD(key, salt)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrInvalidCiphertext
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

func newAEAD(key, salt []byte) (cipher.AEAD, error) {
	derived, err := deriveKey(key, salt)
	if err != nil {
		return nil, err
	}
	defer clearBytes(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
