package domain

import "time"

// Session is the server-side record behind a login cookie.
type Session struct {
	ID             string
	UserID         string
	Username       string
	ProfilePicture string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
