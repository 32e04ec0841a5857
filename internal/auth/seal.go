package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrUnseal is returned when sealed data is malformed or was sealed under a
// different key.
var ErrUnseal = errors.New("unsealing: invalid data or key")

// KeyFromSecret derives a secretbox key from a text secret.
func KeyFromSecret(secret string) *[32]byte {
	key := sha256.Sum256([]byte("healthpilot/seal:" + secret))
	return &key
}

// Seal encrypts and authenticates plaintext, returning URL-safe base64.
func Seal(key *[32]byte, plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Unseal reverses Seal.
func Unseal(key *[32]byte, sealed string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(data) < nonceSize+secretbox.Overhead {
		return "", ErrUnseal
	}

	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])
	plain, ok := secretbox.Open(nil, data[nonceSize:], &nonce, key)
	if !ok {
		return "", ErrUnseal
	}
	return string(plain), nil
}
