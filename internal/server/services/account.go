package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/cryptox"
	"github.com/fnpsdn/netinv/internal/dbx"
	"github.com/fnpsdn/netinv/internal/logging"
	"github.com/fnpsdn/netinv/internal/server/config"
	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
	"github.com/fnpsdn/netinv/internal/totp"
)

// TotpEnrollment is handed back from EnableTotp so the client can render a
// QR code; the secret is not active until ConfirmTotp proves the
// authenticator produces matching codes.
type TotpEnrollment struct {
	Secret          string
	ProvisioningURI string
}

// AccountService covers the account lifecycle: registration with email
// verification, password changes, and second-factor management.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	otp         *OtpService
	logger      logging.Logger
	totpIssuer  string
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, otp *OtpService,
	logger logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		otp:         otp,
		logger:      logger.With("service", "account"),
		totpIssuer:  cfg.TotpIssuer,
	}
}

// Register creates an unverified account and mails a verification code.
// The account exists either way; a failed delivery just means the user asks
// for a resend.
func (s *AccountService) Register(ctx context.Context, email, name, surname string, password []byte) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) == 0 {
		return nil, common.ErrorValidation
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	common.WipeByteArray(password)

	account := &models.Account{
		Email:        email,
		Name:         name,
		Surname:      surname,
		PasswordHash: hash,
		SecondFactor: models.SecondFactorNone,
		Role:         models.RoleViewer,
	}

	account, err = s.repomanager.Accounts(s.db).Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating account: %v", err)
	}

	if err := s.otp.Issue(ctx, account, models.PurposeVerifyEmail); err != nil &&
		!errors.Is(err, common.ErrDeliveryFailure) {
		return nil, err
	}

	return account, nil
}

// VerifyEmail consumes the verification code and marks the account
// verified. Login refuses unverified accounts, so this is the gate into the
// system.
func (s *AccountService) VerifyEmail(ctx context.Context, email string, code string) error {
	account, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	if account.EmailVerified {
		return nil
	}

	if err := s.otp.Verify(ctx, account.ID, models.PurposeVerifyEmail, code); err != nil {
		return err
	}

	if err := s.repomanager.Accounts(s.db).MarkEmailVerified(ctx, account.ID); err != nil {
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "email verified", "account", account.ID)
	return nil
}

// ResendVerification issues a fresh verification code, invalidating the
// previous one. Already-verified accounts are a no-op.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	account, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	if account.EmailVerified {
		return nil
	}

	return s.otp.Issue(ctx, account, models.PurposeVerifyEmail)
}

// ChangePassword swaps the password after proving knowledge of the old one.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, oldPassword, newPassword []byte) error {
	if len(newPassword) == 0 {
		return common.ErrorValidation
	}

	account, err := s.getByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !cryptox.VerifyPassword(oldPassword, account.PasswordHash) {
		return common.ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}
	common.WipeByteArray(oldPassword)
	common.WipeByteArray(newPassword)

	if err := s.repomanager.Accounts(s.db).UpdatePassword(ctx, account.ID, hash); err != nil {
		return common.ErrorInternal
	}

	return nil
}

// EnableTotp provisions a fresh secret and stores it inactive. The account
// keeps logging in without it until ConfirmTotp sees a valid code.
func (s *AccountService) EnableTotp(ctx context.Context, accountID string) (*TotpEnrollment, error) {
	account, err := s.getByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.Accounts(s.db).SetTotpSecret(ctx, account.ID, secret, false); err != nil {
		return nil, common.ErrorInternal
	}

	return &TotpEnrollment{
		Secret:          secret,
		ProvisioningURI: totp.ProvisioningURI(secret, account.Email, s.totpIssuer),
	}, nil
}

// ConfirmTotp activates the pending secret once the authenticator produces
// a matching code, and switches the login method to TOTP.
func (s *AccountService) ConfirmTotp(ctx context.Context, accountID string, code string) error {
	account, err := s.getByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.TotpSecret == "" {
		return common.ErrorValidation
	}
	if !totp.Verify(account.TotpSecret, code, time.Now()) {
		return common.ErrCodeMismatch
	}

	// activation and method switch land together or not at all
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if err := repo.SetTotpSecret(ctx, account.ID, account.TotpSecret, true); err != nil {
			return err
		}
		return repo.SetSecondFactor(ctx, account.ID, models.SecondFactorTotp)
	})
	if err != nil {
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "totp enabled", "account", account.ID)
	return nil
}

// DisableTotp drops the secret and falls the account back to no second
// factor.
func (s *AccountService) DisableTotp(ctx context.Context, accountID string) error {
	account, err := s.getByID(ctx, accountID)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if err := repo.SetTotpSecret(ctx, account.ID, "", false); err != nil {
			return err
		}
		return repo.SetSecondFactor(ctx, account.ID, models.SecondFactorNone)
	})
	if err != nil {
		return common.ErrorInternal
	}

	return nil
}

// SetSecondFactor selects the login method. TOTP requires an active
// confirmed secret; email requires a verified address (which login already
// guarantees).
func (s *AccountService) SetSecondFactor(ctx context.Context, accountID string, method string) error {
	account, err := s.getByID(ctx, accountID)
	if err != nil {
		return err
	}

	switch method {
	case models.SecondFactorNone, models.SecondFactorEmail:
	case models.SecondFactorTotp:
		if !account.TotpEnabled {
			return common.ErrorValidation
		}
	default:
		return common.ErrorValidation
	}

	if err := s.repomanager.Accounts(s.db).SetSecondFactor(ctx, account.ID, method); err != nil {
		return common.ErrorInternal
	}

	return nil
}

func (s *AccountService) getByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, common.ErrorInternal
	}
	return account, nil
}

func (s *AccountService) getByID(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, common.ErrorInternal
	}
	return account, nil
}
