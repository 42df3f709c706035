package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// NewRememberToken returns an opaque url-safe credential for resuming a
// session without re-entering the password.
func NewRememberToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// TokensEqual compares two tokens in constant time.
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
