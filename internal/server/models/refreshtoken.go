package models

import "time"

// RefreshToken is one row of refresh_tokens. Tokens are single use: a
// refresh deletes the row and issues a new pair.
type RefreshToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the token can no longer be exchanged at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
