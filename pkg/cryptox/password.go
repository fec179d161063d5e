package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// ErrMalformedHash is returned when a stored hash is not a PHC argon2id string.
var ErrMalformedHash = errors.New("cryptox: malformed password hash")

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches encoded. A mismatch is
	// (false, nil); only unreadable hashes produce an error.
	Verify(password, encoded string) (bool, error)
}

// Argon2id is the PHC-format argon2id PasswordHasher. Pepper is appended to
// every password before hashing and is never stored alongside the hash.
type Argon2id struct {
	Pepper string
}

var _ PasswordHasher = (*Argon2id)(nil)

func (h *Argon2id) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password+h.Pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2id) Verify(password, encoded string) (bool, error) {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return false, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, ErrMalformedHash
	}

	computed := argon2.IDKey(
		[]byte(password+h.Pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - bounded by the decoded hash length
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
