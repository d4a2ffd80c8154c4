package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// EditTokenBytes is the amount of randomness in a host edit token
const EditTokenBytes = 32

// GenerateEditToken returns a random hex token (64 chars).
// Only its hash should ever be persisted.
func GenerateEditToken() (string, error) {
	b := make([]byte, EditTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error reading random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the lowercase hex SHA-256 digest of token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyToken reports whether candidate hashes to digest.
// An empty candidate never verifies.
func VerifyToken(candidate, digest string) bool {
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(candidate)), []byte(digest)) == 1
}
