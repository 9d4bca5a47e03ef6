package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// keySalt is fixed so that a digest computed when a key is issued
	// still matches the digest recomputed at request time.
	keySalt       = "hermes-api-key-v1"
	keyIterations = 600000
	keyBytes      = 32
)

// HashKey derives the storable digest for an API key.
func HashKey(key string) string {
	digest := pbkdf2.Key([]byte(key), []byte(keySalt), keyIterations, keyBytes, sha256.New)
	return hex.EncodeToString(digest)
}

// GenerateKey returns a new random API key as a hex string.
func GenerateKey() (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// KeyVerifier validates presented API keys against a configured digest.
type KeyVerifier struct {
	digest []byte
}

// NewKeyVerifier creates a verifier for the given stored digest.
func NewKeyVerifier(storedDigest string) *KeyVerifier {
	return &KeyVerifier{digest: []byte(storedDigest)}
}

// Verify reports whether the presented key hashes to the stored digest.
// The comparison is constant time.
func (v *KeyVerifier) Verify(key string) bool {
	if len(v.digest) == 0 {
		return false
	}

	computed := []byte(HashKey(key))
	return subtle.ConstantTimeCompare(computed, v.digest) == 1
}
