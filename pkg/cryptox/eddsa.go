package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// GenerateEd25519Key generates a new Ed25519 private key in PKCS8 PEM form.
func GenerateEd25519Key() ([]byte, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// LoadOrCreateEd25519Key returns the PEM key stored at path. A missing file is
// created with a freshly generated key. An empty path yields an ephemeral key
// that is never written to disk.
func LoadOrCreateEd25519Key(path string) ([]byte, error) {
	if path == "" {
		return GenerateEd25519Key()
	}
	path = filepath.Clean(path)

	raw, err := os.ReadFile(path)
	if err == nil {
		return raw, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	pemKey, err := GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, pemKey, 0o600); err != nil {
		return nil, err
	}
	return pemKey, nil
}
