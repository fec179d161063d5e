package jwtx

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionSigner signs and verifies session tokens with a single Ed25519 key.
type SessionSigner struct {
	kid    string
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
	now    func() time.Time
}

// NewSessionSigner loads a PKCS8 PEM Ed25519 key. The key id is derived from
// the public key so rotating the key file invalidates existing cookies.
func NewSessionSigner(pemKey []byte, issuer string) (*SessionSigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not Ed25519 private key")
	}
	pub := key.Public().(ed25519.PublicKey)

	sum := sha256.Sum256(pub)
	return &SessionSigner{
		kid:    base64.RawURLEncoding.EncodeToString(sum[:8]),
		key:    key,
		pub:    pub,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

func (s *SessionSigner) KID() string    { return s.kid }
func (s *SessionSigner) Issuer() string { return s.issuer }

// Sign turns claims into a compact EdDSA JWT.
func (s *SessionSigner) Sign(claims SessionClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Verify checks the signature, issuer and expiry and returns the claims.
func (s *SessionSigner) Verify(token string) (SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims SessionClaims
	parsed, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != s.kid {
			return nil, fmt.Errorf("jwtx: unknown kid %q", kid)
		}
		return s.pub, nil
	})
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !parsed.Valid {
		return SessionClaims{}, ErrMalformed
	}

	if err := claims.validate(s.issuer, s.now().UTC()); err != nil {
		return SessionClaims{}, err
	}
	return claims, nil
}
