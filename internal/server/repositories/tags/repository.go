package tags

import (
	"context"

	"github.com/fnpsdn/netinv/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	ListByDevice(ctx context.Context, deviceID string) ([]*models.Tag, error)
	Delete(ctx context.Context, id string) error

	// Assign is idempotent: tagging an already-tagged device is not an error.
	Assign(ctx context.Context, deviceID string, tagID string) error
	Unassign(ctx context.Context, deviceID string, tagID string) error
}
