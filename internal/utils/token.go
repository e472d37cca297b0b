package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewSessionToken returns a fresh opaque session token with 128 bits of
// entropy, hex-encoded.
func NewSessionToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
