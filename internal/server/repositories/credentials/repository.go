package credentials

import (
	"context"

	"github.com/fnpsdn/netinv/internal/server/models"
)

type Repository interface {
	// Upsert replaces the credential for the device; a device holds at
	// most one.
	Upsert(ctx context.Context, credential *models.DeviceCredential) (*models.DeviceCredential, error)
	GetByDevice(ctx context.Context, deviceID string) (*models.DeviceCredential, error)
	DeleteByDevice(ctx context.Context, deviceID string) error
}
