package backups

import (
	"context"

	"github.com/fnpsdn/netinv/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, backup *models.Backup) (*models.Backup, error)
	GetByID(ctx context.Context, id string) (*models.Backup, error)
	ListByDevice(ctx context.Context, deviceID string) ([]*models.Backup, error)

	// MarkStored flips a pending backup to stored once the client confirms
	// the upload. Returns false if it was not pending.
	MarkStored(ctx context.Context, id string) (bool, error)
}
