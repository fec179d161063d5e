package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a login session.
const DefaultSessionTTL = 7 * 24 * time.Hour

var (
	ErrMalformed = errors.New("jwtx: malformed token")
	ErrExpired   = errors.New("jwtx: token expired")
	ErrIssuer    = errors.New("jwtx: issuer mismatch")
	ErrMissingID = errors.New("jwtx: missing session id")
)

// SessionClaims name the server-side session a cookie refers to. The
// username travels along so logs can be attributed without a lookup.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Session ID (primary key of the session row)
	SID string `json:"sid"`

	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds claims for session sid owned by subject.
func NewSessionClaims(issuer, subject, sid, username string, now time.Time, ttl time.Duration) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SID:      sid,
		Username: username,
	}
}

// validate checks issuer, expiry and the session id at time now.
func (c *SessionClaims) validate(issuer string, now time.Time) error {
	if issuer != "" && c.Issuer != issuer {
		return ErrIssuer
	}
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.SID == "" {
		return ErrMissingID
	}
	return nil
}
