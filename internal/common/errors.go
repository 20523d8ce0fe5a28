// Package common defines shared constants and sentinel errors used across
// the inventory server components. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Authentication flow errors. Login failures of every kind collapse
	// into ErrInvalidCredentials before leaving the service layer, so a
	// caller cannot tell an unknown account from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")

	// Second-factor errors. These stay distinct so a legitimate user can
	// tell an expired code from a mistyped one.
	ErrCodeExpired     = errors.New("code expired")
	ErrCodeMismatch    = errors.New("code mismatch")
	ErrTooManyAttempts = errors.New("too many attempts")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Mail transport error. Non-fatal: an issued code stays valid for
	// verification even when delivery fails.
	ErrDeliveryFailure = errors.New("delivery failure")
)
