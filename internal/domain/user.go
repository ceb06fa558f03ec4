package domain

import "time"

// User represents a registered account. Username is immutable after
// creation; PasswordHash never leaves the service boundary.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
