package domain

import "time"

type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string // argon2 encoded
	IsVerified     bool
	ProfilePicture string // optional URL
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
