package identity

import "time"

// User represents a registered account holder.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash []byte
	// TokenVersion invalidates previously issued tokens when bumped.
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    time.Time
}

// Credentials carries sign-up / sign-in input.
type Credentials struct {
	Email       string
	Password    string
	DisplayName string
}
