package otpcodes

import (
	"context"

	"github.com/fnpsdn/netinv/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, code *models.OneTimeCode) (*models.OneTimeCode, error)

	// GetLatestLive returns the most recently issued unconsumed code for
	// the account and purpose, expired or not; expiry is the caller's
	// check so it can distinguish "expired" from "mismatched".
	GetLatestLive(ctx context.Context, accountID string, purpose string) (*models.OneTimeCode, error)

	// Consume marks the code consumed if and only if it has not been
	// consumed yet. Exactly one of any number of concurrent calls for the
	// same code observes true.
	Consume(ctx context.Context, id string) (bool, error)

	// InvalidateLive consumes every live code for the account and purpose,
	// enforcing the at-most-one-live-code policy before a new issue.
	InvalidateLive(ctx context.Context, accountID string, purpose string) error

	// DeleteExpired prunes codes whose expiry has passed.
	DeleteExpired(ctx context.Context) error
}
