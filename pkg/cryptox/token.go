package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Token sizes in bytes before encoding.
const (
	TokenSize128 = 16
	TokenSize256 = 32
)

// VerificationCodeBytes is the entropy of an emailed verification code. Hex
// encoding yields six characters.
const VerificationCodeBytes = 3

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token so
// it can be stored and looked up without keeping the raw value.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateVerificationCode returns a six character upper-case hex code.
func GenerateVerificationCode() (string, error) {
	buf := make([]byte, VerificationCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// CodesEqual compares two verification codes case-insensitively in constant
// time with respect to their contents.
func CodesEqual(expected, supplied string) bool {
	a := []byte(strings.ToUpper(strings.TrimSpace(expected)))
	b := []byte(strings.ToUpper(strings.TrimSpace(supplied)))
	return subtle.ConstantTimeCompare(a, b) == 1
}
