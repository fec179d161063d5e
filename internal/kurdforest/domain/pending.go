package domain

import "time"

// PendingRegistration is a sign-up waiting for its emailed code. It is never
// persisted and never mutated; a re-registration replaces it wholesale.
type PendingRegistration struct {
	Token            string // opaque, addresses the record
	Username         string
	Email            string
	PasswordHash     string
	VerificationCode string // six upper-case hex characters
	CreatedAt        time.Time
}

// Age reports how long ago the registration was staged.
func (p PendingRegistration) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}
