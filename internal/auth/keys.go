// Package auth checks the bearer token on rule table writes. The admin key
// may be configured in plain text or as a bcrypt hash.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// KeyPrefix is the prefix for all generated admin keys
	KeyPrefix = "jsk_"
	// KeyLength is the length of the random part of the key (32 bytes = 256 bits)
	KeyLength = 32
	// BCryptCost is the cost factor for bcrypt hashing
	BCryptCost = 12
)

// GenerateAPIKey returns a new random admin key.
func GenerateAPIKey() (string, error) {
	randomBytes := make([]byte, KeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return KeyPrefix + base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// HashAPIKey hashes an API key using bcrypt
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hash), nil
}

// VerifyAPIKey verifies an API key against a bcrypt hash
func VerifyAPIKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// VerifyAPIKeyConstantTime compares got against a plain text key in constant time.
func VerifyAPIKeyConstantTime(got, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// ExtractBearerToken extracts the bearer token from an Authorization header
func ExtractBearerToken(authHeader string) string {
	token := strings.TrimSpace(authHeader)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// Verifier accepts tokens matching the configured admin key. A hash, when
// set, takes precedence over the plain key.
type Verifier struct {
	plain string
	hash  string
}

func NewVerifier(plain, hash string) Verifier {
	return Verifier{plain: plain, hash: hash}
}

// Enabled reports whether any key is configured. A disabled verifier
// rejects every token.
func (v Verifier) Enabled() bool {
	return v.plain != "" || v.hash != ""
}

func (v Verifier) Verify(token string) bool {
	switch {
	case token == "":
		return false
	case v.hash != "":
		return VerifyAPIKey(token, v.hash)
	case v.plain != "":
		return VerifyAPIKeyConstantTime(token, v.plain)
	default:
		return false
	}
}
