package models

import "time"

// LoginChallenge tracks a login that passed the password check but still
// owes a second factor. Attempts is bumped atomically in the datastore so
// concurrent submissions cannot dodge the limit.
type LoginChallenge struct {
	ID          string
	AccountID   string
	Method      string
	Attempts    int
	ExpiresAt   time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Open reports whether the challenge can still accept a code.
func (c *LoginChallenge) Open(now time.Time) bool {
	return c.CompletedAt == nil && now.Before(c.ExpiresAt)
}
