package entity

import "time"

// Profile is the per-identity metadata record created at sign-up. There is
// one profile per identity, keyed by the identity id; CreatedAt is set once
// and never updated.
type Profile struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
