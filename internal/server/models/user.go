package models

import "time"

// User is a registered account. Name is optional; an empty string means
// the user did not give one.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}
