package accounts

import (
	"context"

	"github.com/fnpsdn/netinv/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	MarkEmailVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	SetTotpSecret(ctx context.Context, id string, secret string, enabled bool) error
	SetSecondFactor(ctx context.Context, id string, method string) error
}
