package service

import (
	"errors"

	"github.com/samber/oops"
)

// Error categories. Handlers switch on these with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrAuth         = errors.New("authentication failed")
	ErrToken        = errors.New("verification token invalid")
	ErrCodeMismatch = errors.New("verification code mismatch")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrDelivery     = errors.New("delivery failed")
	ErrStore        = errors.New("store failure")
	ErrProvider     = errors.New("metadata provider failure")
)

// Error is a specific failure inside a category. Its text is safe to show to
// the user, and errors.Is matches both the Error itself and its Kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool { return target == e.Kind }

var (
	ErrMissingFields     = &Error{ErrValidation, "All fields are required."}
	ErrInvalidEmail      = &Error{ErrValidation, "Please enter a valid email address."}
	ErrUserExists        = &Error{ErrValidation, "A user with that email or username already exists."}
	ErrMissingExternalID = &Error{ErrValidation, "An item id is required."}
	ErrInvalidMediaType  = &Error{ErrValidation, "Media type must be movie or tv."}

	ErrInvalidCredentials = &Error{ErrAuth, "Invalid email or password."}
	ErrUnverified         = &Error{ErrAuth, "Please verify your email before logging in."}
	ErrNoSession          = &Error{ErrAuth, "You must be logged in."}
	ErrInvalidSession     = &Error{ErrAuth, "Your session is invalid or has expired."}

	ErrUnknownToken = &Error{ErrToken, "Verification code has expired. Please register again."}
	ErrTokenExpired = &Error{ErrToken, "Verification code has expired. Please register again."}
	ErrCodeRejected = &Error{ErrCodeMismatch, "Invalid verification code."}

	ErrUserNotFound  = &Error{ErrNotFound, "User not found."}
	ErrMovieNotFound = &Error{ErrNotFound, "Item not found."}

	ErrAlreadyInWatchlist = &Error{ErrConflict, "Item already in watchlist."}
)

func storeError(code string, err error) error {
	return errors.Join(ErrStore, oops.Code(code).Wrap(err))
}

func deliveryError(err error) error {
	return errors.Join(ErrDelivery, oops.Code("VERIFICATION_EMAIL_FAILED").Wrap(err))
}

func providerError(externalID string, err error) error {
	return errors.Join(ErrProvider, oops.Code("METADATA_FETCH_FAILED").With("external_id", externalID).Wrap(err))
}
