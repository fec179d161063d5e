package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreatePepper reads the pepper stored at path, generating and
// persisting a fresh one on first start.
func LoadOrCreatePepper(path string) (string, error) {
	path = filepath.Clean(path)

	raw, err := os.ReadFile(path)
	if err == nil {
		return strings.TrimSpace(string(raw)), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}

	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	pepper := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(path, []byte(pepper), 0o600); err != nil {
		return "", err
	}
	return pepper, nil
}
