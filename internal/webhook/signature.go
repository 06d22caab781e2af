package webhook

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Request headers set on every delivery.
const (
	HeaderSignature = "X-Jungse-Signature"
	HeaderEvent     = "X-Jungse-Event"
	HeaderDelivery  = "X-Jungse-Delivery"
)

const (
	signaturePrefix = "sha256="
	// SecretPrefix marks secrets made by NewSecret.
	SecretPrefix = "whsec_"
)

// Sign returns the HeaderSignature value for payload.
func Sign(payload []byte, secret string) string {
	return signaturePrefix + hex.EncodeToString(digest(payload, secret))
}

// Verify checks a HeaderSignature value on the receiving end.
func Verify(payload []byte, header, secret string) bool {
	sum, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sum)
	if err != nil {
		return false
	}
	return hmac.Equal(got, digest(payload, secret))
}

func digest(payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}

// NewSecret returns a random signing secret for WEBHOOK_SECRET.
func NewSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate webhook secret: %w", err)
	}
	return SecretPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}
