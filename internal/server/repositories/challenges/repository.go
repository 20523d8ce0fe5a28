package challenges

import (
	"context"

	"github.com/fnpsdn/netinv/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, challenge *models.LoginChallenge) (*models.LoginChallenge, error)
	GetByID(ctx context.Context, id string) (*models.LoginChallenge, error)

	// IncrementAttempts bumps the attempt counter atomically and returns
	// the new value, so concurrent submissions each observe a distinct
	// count and the limit cannot be raced past.
	IncrementAttempts(ctx context.Context, id string) (int, error)

	// Complete closes the challenge if it is still open. Returns false if
	// it was already completed.
	Complete(ctx context.Context, id string) (bool, error)
}
