package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	"github.com/aussiebroadwan/kurdforest/pkg/cryptox"
	"github.com/aussiebroadwan/kurdforest/pkg/errutil"
	"github.com/aussiebroadwan/kurdforest/pkg/idx"
	"github.com/aussiebroadwan/kurdforest/pkg/jwtx"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

// SessionService logs users in and out and resolves session cookies.
type SessionService struct {
	Store  store.Store
	Signer *jwtx.SessionSigner
	Hasher cryptox.PasswordHasher
	TTL    time.Duration
	Now    func() time.Time

	// Hash verified when the email is unknown so both paths cost the same
	dummyOnce sync.Once
	dummyHash string
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return jwtx.DefaultSessionTTL
}

// Login checks email and password and, for a verified user, opens a session.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.Session, string, error) {
	log := slogx.FromContext(ctx)
	email = strings.TrimSpace(email)

	// 1. Look up the user
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		loginsTotal.WithLabelValues("error").Inc()
		return domain.Session{}, "", storeError("LOGIN_LOOKUP_FAILED", err)
	}
	found := err == nil

	// 2. Verify the password (against a dummy hash for unknown emails)
	encoded := user.PasswordHash
	if !found {
		encoded = s.dummy()
	}
	ok, err := s.Hasher.Verify(password, encoded)
	if err != nil {
		log.Warn("stored password hash unreadable", slog.String("user_id", user.ID), slog.Any("error", err))
		ok = false
	}
	if !found || !ok {
		loginsTotal.WithLabelValues("invalid_credentials").Inc()
		return domain.Session{}, "", ErrInvalidCredentials
	}

	// 3. Only verified accounts may log in
	if !user.IsVerified {
		loginsTotal.WithLabelValues("unverified").Inc()
		return domain.Session{}, "", ErrUnverified
	}

	// 4. Issue the session
	sess, token, err := s.Issue(ctx, user)
	if err != nil {
		loginsTotal.WithLabelValues("error").Inc()
		return domain.Session{}, "", err
	}

	loginsTotal.WithLabelValues("success").Inc()
	log.Info("user logged in", slog.String("user_id", user.ID), slog.String("session_id", sess.ID))
	return sess, token, nil
}

// Issue persists a new session for user and returns it with its signed token.
func (s *SessionService) Issue(ctx context.Context, user domain.User) (domain.Session, string, error) {
	return s.issueWith(ctx, s.Store, user)
}

// issueWith writes the session through repos so callers can include it in
// a transaction.
func (s *SessionService) issueWith(ctx context.Context, repos store.Repos, user domain.User) (domain.Session, string, error) {
	now := s.now()
	sess := domain.Session{
		ID:             idx.NewAt(now).String(),
		UserID:         user.ID,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl()),
	}

	if err := repos.Sessions().CreateSession(ctx, sess); err != nil {
		return domain.Session{}, "", storeError("SESSION_CREATE_FAILED", err)
	}

	claims := jwtx.NewSessionClaims(s.Signer.Issuer(), user.ID, sess.ID, user.Username, now, s.ttl())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, "", storeError("SESSION_SIGN_FAILED", err)
	}
	return sess, token, nil
}

// Authenticate resolves a session token to its live session row.
func (s *SessionService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return domain.Session{}, ErrInvalidSession
	}

	sess, err := s.Store.Sessions().GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidSession
		}
		return domain.Session{}, storeError("SESSION_LOOKUP_FAILED", err)
	}

	if sess.UserID != claims.Subject || sess.Expired(s.now()) {
		return domain.Session{}, ErrInvalidSession
	}
	return sess, nil
}

// Logout deletes the session. Failures are logged and otherwise ignored so
// the caller can always clear the cookie.
func (s *SessionService) Logout(ctx context.Context, sess *domain.Session) {
	if sess == nil {
		return
	}
	if err := s.Store.Sessions().DeleteSession(ctx, sess.ID); err != nil {
		errutil.LogError(slogx.FromContext(ctx), "failed to delete session", err)
		return
	}
	slogx.FromContext(ctx).Info("user logged out", slog.String("session_id", sess.ID))
}

func (s *SessionService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash("kurdforest-dummy-password")
		if err != nil {
			// Verify on a malformed hash fails fast, which still denies login
			h = ""
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
