package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/mailer"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/pending"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	"github.com/aussiebroadwan/kurdforest/pkg/cryptox"
	"github.com/aussiebroadwan/kurdforest/pkg/errutil"
	"github.com/aussiebroadwan/kurdforest/pkg/idx"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

// PendingStore holds registrations between submit and verify.
// *pending.Registry implements it.
type PendingStore interface {
	Store(token string, reg domain.PendingRegistration)
	Get(token string) (domain.PendingRegistration, bool)
	Remove(token string) bool
}

var _ PendingStore = (*pending.Registry)(nil)

// RegistrationService stages sign-ups, emails their code and commits the
// account once the code is confirmed.
type RegistrationService struct {
	Store    store.Store
	Pending  PendingStore
	Hasher   cryptox.PasswordHasher
	Mailer   mailer.Mailer
	Sessions *SessionService
	SiteName string

	// TTL is how long a code stays valid. Defaults to pending.DefaultTTL.
	TTL time.Duration
	Now func() time.Time
}

func (s *RegistrationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *RegistrationService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return pending.DefaultTTL
}

// Register validates the sign-up, stages it and emails the verification
// code. It returns the token that addresses the staged registration.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) (string, error) {
	log := slogx.FromContext(ctx)
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	// 1. Validate input
	if username == "" || email == "" || password == "" {
		registrationsTotal.WithLabelValues("invalid").Inc()
		return "", ErrMissingFields
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		registrationsTotal.WithLabelValues("invalid").Inc()
		return "", ErrInvalidEmail
	}

	// 2. Reject identities already held by a committed user
	_, err := s.Store.Users().FindUserByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		log.Info("registration rejected, identity taken", slog.String("username", username))
		registrationsTotal.WithLabelValues("exists").Inc()
		return "", ErrUserExists
	case !errors.Is(err, store.ErrNotFound):
		registrationsTotal.WithLabelValues("error").Inc()
		return "", storeError("REGISTRATION_LOOKUP_FAILED", err)
	}

	// 3. Hash the password and mint the code and token
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		registrationsTotal.WithLabelValues("error").Inc()
		return "", storeError("PASSWORD_HASH_FAILED", err)
	}
	code, err := cryptox.GenerateVerificationCode()
	if err != nil {
		registrationsTotal.WithLabelValues("error").Inc()
		return "", storeError("VERIFICATION_CODE_FAILED", err)
	}
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		registrationsTotal.WithLabelValues("error").Inc()
		return "", storeError("VERIFICATION_TOKEN_FAILED", err)
	}

	s.Pending.Store(token, domain.PendingRegistration{
		Token:            token,
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		VerificationCode: code,
		CreatedAt:        s.now(),
	})

	// 4. Send the code; an undeliverable registration is dropped
	msg, err := mailer.VerificationEmail(email, code, s.SiteName, expiryText(s.ttl()))
	if err == nil {
		err = s.Mailer.Send(ctx, msg)
	}
	if err != nil {
		s.Pending.Remove(token)
		registrationsTotal.WithLabelValues("undeliverable").Inc()
		return "", deliveryError(err)
	}

	registrationsTotal.WithLabelValues("staged").Inc()
	log.Info("registration staged", slog.String("username", username))
	return token, nil
}

// IsPending reports whether token addresses a staged registration.
func (s *RegistrationService) IsPending(token string) bool {
	if token == "" {
		return false
	}
	_, ok := s.Pending.Get(token)
	return ok
}

// Verify checks code against the registration staged under token. On a
// match the user is created already verified and a session is opened.
func (s *RegistrationService) Verify(ctx context.Context, token, code string) (domain.Session, string, error) {
	log := slogx.FromContext(ctx)

	// 1. Find the staged registration
	reg, ok := s.Pending.Get(token)
	if !ok {
		verificationsTotal.WithLabelValues("unknown_token").Inc()
		return domain.Session{}, "", ErrUnknownToken
	}

	// 2. Expire it if the window has passed
	if reg.Age(s.now()) > s.ttl() {
		s.Pending.Remove(token)
		verificationsTotal.WithLabelValues("expired").Inc()
		return domain.Session{}, "", ErrTokenExpired
	}

	// 3. Compare codes; a wrong code keeps the registration
	if !cryptox.CodesEqual(reg.VerificationCode, code) {
		verificationsTotal.WithLabelValues("rejected").Inc()
		return domain.Session{}, "", ErrCodeRejected
	}

	// 4. Claim the registration so only one verifier commits it
	if !s.Pending.Remove(token) {
		verificationsTotal.WithLabelValues("unknown_token").Inc()
		return domain.Session{}, "", ErrUnknownToken
	}

	// 5. Commit the user and open a session atomically
	now := s.now()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: reg.PasswordHash,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var (
		sess   domain.Session
		signed string
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		var err error
		sess, signed, err = s.Sessions.issueWith(ctx, tx, user)
		return err
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		verificationsTotal.WithLabelValues("exists").Inc()
		return domain.Session{}, "", ErrUserExists
	case err != nil:
		// Put the registration back so the user can retry
		s.Pending.Store(token, reg)
		verificationsTotal.WithLabelValues("error").Inc()
		errutil.LogError(log, "failed to commit verified user", err)
		if errors.Is(err, ErrStore) {
			return domain.Session{}, "", err
		}
		return domain.Session{}, "", storeError("USER_CREATE_FAILED", err)
	}

	verificationsTotal.WithLabelValues("committed").Inc()
	log.Info("user verified", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return sess, signed, nil
}

func expiryText(ttl time.Duration) string {
	if ttl == time.Minute {
		return "1 minute"
	}
	return ttl.String()
}
