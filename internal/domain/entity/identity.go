package entity

import "time"

// Identity is an authenticated principal. Anonymous identities carry no
// email or password; they exist so the application always has some identity
// context before the dashboard is shown.
//
// PasswordHash holds a bcrypt hash for email/password identities.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	Anonymous    bool
	CreatedAt    time.Time
}
