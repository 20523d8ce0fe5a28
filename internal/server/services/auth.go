package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/cryptox"
	"github.com/fnpsdn/netinv/internal/logging"
	"github.com/fnpsdn/netinv/internal/server/auth"
	"github.com/fnpsdn/netinv/internal/server/config"
	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
	"github.com/fnpsdn/netinv/internal/totp"
)

// Login outcome states.
const (
	StateAuthenticated       = "authenticated"
	StateSecondFactorPending = "second_factor_pending"
)

// LoginResult reports where a login attempt landed. AccessToken is set only
// in the authenticated state; ChallengeID only while a second factor is
// pending.
type LoginResult struct {
	State       string
	AccessToken string
	ChallengeID string
}

// AuthService runs the login state machine: password check, optional
// second-factor challenge, token minting. Every password-stage failure
// collapses into ErrInvalidCredentials so callers cannot probe which
// accounts exist or are verified.
type AuthService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	otp          *OtpService
	logger       logging.Logger
	jwtSecret    []byte
	tokenTTL     time.Duration
	challengeTTL time.Duration
	attemptLimit int
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, otp *OtpService,
	logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:           db,
		repomanager:  m,
		otp:          otp,
		logger:       logger.With("service", "auth"),
		jwtSecret:    []byte(cfg.SecretKey),
		tokenTTL:     cfg.AccessTokenValidityDuration,
		challengeTTL: cfg.ChallengeValidityDuration,
		attemptLimit: cfg.SecondFactorAttemptLimit,
	}
}

// Login verifies the password and either mints a token (no second factor
// configured) or opens a login challenge. For the email method the sign-in
// code is issued immediately; a delivery failure does not fail the login,
// the client can ask for a resend.
func (s *AuthService) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.audit(ctx, "", "auth.login.failed", email, "unknown account")
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !cryptox.VerifyPassword(password, account.PasswordHash) || !account.EmailVerified {
		s.audit(ctx, account.ID, "auth.login.failed", email, "")
		return nil, common.ErrInvalidCredentials
	}

	if !account.TwoFactorEnabled() {
		token, err := s.mintToken(account.ID)
		if err != nil {
			return nil, err
		}
		s.audit(ctx, account.ID, "auth.login", email, "")
		return &LoginResult{State: StateAuthenticated, AccessToken: token}, nil
	}

	challenge, err := s.repomanager.Challenges(s.db).Create(ctx, &models.LoginChallenge{
		AccountID: account.ID,
		Method:    account.SecondFactor,
		ExpiresAt: time.Now().Add(s.challengeTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating challenge: %v", err)
	}

	if account.SecondFactor == models.SecondFactorEmail {
		if err := s.otp.Issue(ctx, account, models.PurposeLogin); err != nil &&
			!errors.Is(err, common.ErrDeliveryFailure) {
			return nil, err
		}
	}

	return &LoginResult{State: StateSecondFactorPending, ChallengeID: challenge.ID}, nil
}

// SubmitSecondFactor closes an open challenge with a TOTP or emailed code.
// Wrong codes burn an attempt; once the limit is reached the challenge is
// dead and only a fresh login can continue.
func (s *AuthService) SubmitSecondFactor(ctx context.Context, challengeID string, code string) (*LoginResult, error) {
	challenge, err := s.repomanager.Challenges(s.db).GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !challenge.Open(time.Now()) {
		return nil, common.ErrInvalidCredentials
	}
	if challenge.Attempts >= s.attemptLimit {
		return nil, common.ErrTooManyAttempts
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, challenge.AccountID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if verifyErr := s.verifyFactor(ctx, account, challenge, code); verifyErr != nil {
		return nil, s.burnAttempt(ctx, challenge, verifyErr)
	}

	done, err := s.repomanager.Challenges(s.db).Complete(ctx, challenge.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !done {
		// lost the race against a parallel submission
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.mintToken(account.ID)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, account.ID, "auth.login", account.Email, "second factor "+challenge.Method)
	return &LoginResult{State: StateAuthenticated, AccessToken: token}, nil
}

// RequestOtp re-sends the sign-in code for an open email challenge. The
// previously issued code is invalidated by the fresh issue.
func (s *AuthService) RequestOtp(ctx context.Context, challengeID string) error {
	challenge, err := s.repomanager.Challenges(s.db).GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCredentials
		}
		return common.ErrorInternal
	}

	if !challenge.Open(time.Now()) || challenge.Method != models.SecondFactorEmail {
		return common.ErrInvalidCredentials
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, challenge.AccountID)
	if err != nil {
		return common.ErrorInternal
	}

	return s.otp.Issue(ctx, account, models.PurposeLogin)
}

func (s *AuthService) verifyFactor(ctx context.Context, account *models.Account,
	challenge *models.LoginChallenge, code string) error {

	switch challenge.Method {
	case models.SecondFactorTotp:
		if !totp.Verify(account.TotpSecret, code, time.Now()) {
			return common.ErrCodeMismatch
		}
		return nil
	case models.SecondFactorEmail:
		return s.otp.Verify(ctx, account.ID, models.PurposeLogin, code)
	default:
		return common.ErrorInternal
	}
}

// burnAttempt records a failed verification. The datastore increments the
// counter atomically, so two racing wrong submissions cannot both see a
// count under the limit.
func (s *AuthService) burnAttempt(ctx context.Context, challenge *models.LoginChallenge, verifyErr error) error {
	attempts, err := s.repomanager.Challenges(s.db).IncrementAttempts(ctx, challenge.ID)
	if err != nil {
		return common.ErrorInternal
	}

	if attempts >= s.attemptLimit {
		s.audit(ctx, challenge.AccountID, "auth.2fa.locked", "", "")
		return common.ErrTooManyAttempts
	}

	return verifyErr
}

func (s *AuthService) mintToken(accountID string) (string, error) {
	token, err := auth.GenerateToken(accountID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// audit writes best-effort: a failed insert must never break a login.
func (s *AuthService) audit(ctx context.Context, actorID, action, target, detail string) {
	err := s.repomanager.Audit(s.db).Append(ctx, &models.AuditEvent{
		ActorID: actorID, Action: action, Target: target, Detail: detail,
	})
	if err != nil {
		s.logger.Warn(ctx, "audit append failed", "action", action, "error", err)
	}
}
