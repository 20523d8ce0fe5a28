// Package services contains the server-side business logic: account
// lifecycle, the login state machine, one-time code issuance, and the
// inventory operations.
package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/logging"
	"github.com/fnpsdn/netinv/internal/mailer"
	"github.com/fnpsdn/netinv/internal/server/config"
	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
)

// codeLength is the number of digits in an emailed one-time code.
const codeLength = 6

// OtpService issues and verifies emailed one-time codes. Only the SHA-256
// digest of a code is persisted; the plaintext goes out in the mail and is
// then dropped.
type OtpService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Mailer
	logger      logging.Logger
	ttl         time.Duration
}

func NewOtpService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer,
	logger logging.Logger, cfg *config.Config) *OtpService {
	return &OtpService{
		db:          db,
		repomanager: m,
		mailer:      ml,
		logger:      logger.With("service", "otp"),
		ttl:         cfg.OtpValidityDuration,
	}
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Issue mints a fresh code for the account and purpose, invalidating any
// code still live, and mails it. The code is committed before the send, so
// a delivery failure leaves it verifiable; the failure is logged and
// reported as ErrDeliveryFailure for the caller to decide on.
func (s *OtpService) Issue(ctx context.Context, account *models.Account, purpose string) error {
	code, err := common.MakeRandNumericCode(codeLength)
	if err != nil {
		return common.ErrorInternal
	}

	repo := s.repomanager.OtpCodes(s.db)

	// expiry is lazy; prune old rows when we are here anyway
	if err := repo.DeleteExpired(ctx); err != nil {
		s.logger.Warn(ctx, "expired code prune failed", "error", err)
	}

	if err := repo.InvalidateLive(ctx, account.ID, purpose); err != nil {
		return fmt.Errorf("error invalidating codes: %v", err)
	}

	now := time.Now()
	_, err = repo.Insert(ctx, &models.OneTimeCode{
		AccountID: account.ID,
		CodeHash:  hashCode(code),
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return fmt.Errorf("error storing code: %v", err)
	}

	if err := s.mailer.SendCode(ctx, account.Email, code, purpose); err != nil {
		s.logger.Error(ctx, "code delivery failed", "account", account.ID,
			"purpose", purpose, "error", err)
		return common.ErrDeliveryFailure
	}

	return nil
}

// Verify checks the submitted code against the single live code for the
// account and purpose and consumes it on match. Expired codes report
// ErrCodeExpired; everything else that does not match (no live code, wrong
// digits, already consumed by a concurrent winner) reports ErrCodeMismatch.
func (s *OtpService) Verify(ctx context.Context, accountID string, purpose string, code string) error {
	repo := s.repomanager.OtpCodes(s.db)

	live, err := repo.GetLatestLive(ctx, accountID, purpose)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrCodeMismatch
		}
		return fmt.Errorf("error loading code: %v", err)
	}

	if live.Expired(time.Now()) {
		return common.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(hashCode(code)), []byte(live.CodeHash)) != 1 {
		return common.ErrCodeMismatch
	}

	won, err := repo.Consume(ctx, live.ID)
	if err != nil {
		return fmt.Errorf("error consuming code: %v", err)
	}
	if !won {
		return common.ErrCodeMismatch
	}

	return nil
}
