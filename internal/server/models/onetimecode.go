package models

import "time"

// One-time code purposes.
const (
	PurposeVerifyEmail = "verify_email"
	PurposeLogin       = "login"
)

// OneTimeCode is an emailed numeric code. Only the SHA-256 digest of the
// code is stored; the plaintext exists only in the outgoing mail.
// Issuing a new code for the same account and purpose consumes all prior
// live codes, so at most one is ever valid.
type OneTimeCode struct {
	ID         string
	AccountID  string
	CodeHash   string
	Purpose    string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// Expired reports whether the code is past its expiry at the given time.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
