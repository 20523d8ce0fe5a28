// Package models contains the persistence-layer records shared by the
// repositories and services.
package models

import "time"

// Second-factor methods configurable per account.
const (
	SecondFactorNone  = "none"
	SecondFactorTotp  = "totp"
	SecondFactorEmail = "email"
)

// Account roles.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

type Account struct {
	ID            string
	Email         string
	Name          string
	Surname       string
	PasswordHash  []byte
	EmailVerified bool
	TotpSecret    string
	TotpEnabled   bool
	SecondFactor  string
	Role          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TwoFactorEnabled reports whether login must go through a second-factor
// challenge for this account.
func (a *Account) TwoFactorEnabled() bool {
	switch a.SecondFactor {
	case SecondFactorTotp:
		return a.TotpEnabled
	case SecondFactorEmail:
		return true
	default:
		return false
	}
}
