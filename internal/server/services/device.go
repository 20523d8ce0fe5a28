package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/fnpsdn/netinv/internal/cryptox"
	"github.com/fnpsdn/netinv/internal/logging"
	"github.com/fnpsdn/netinv/internal/server/config"
	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
)

// DeviceService manages the device inventory and the device login
// credentials. Credential secrets are encrypted with AES-GCM under the
// process credential key before they reach the repository and decrypted on
// the way out.
type DeviceService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	logger        logging.Logger
	credentialKey []byte
}

func NewDeviceService(db *sql.DB, m repomanager.RepositoryManager,
	logger logging.Logger, cfg *config.Config) (*DeviceService, error) {

	key, err := hex.DecodeString(cfg.CredentialKeyHex)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("credential key must be 32 hex-encoded bytes")
	}

	return &DeviceService{
		db:            db,
		repomanager:   m,
		logger:        logger.With("service", "device"),
		credentialKey: key,
	}, nil
}

func (s *DeviceService) Create(ctx context.Context, device *models.Device) (*models.Device, error) {
	return s.repomanager.Devices(s.db).Create(ctx, device)
}

func (s *DeviceService) Get(ctx context.Context, id string) (*models.Device, error) {
	return s.repomanager.Devices(s.db).GetByID(ctx, id)
}

func (s *DeviceService) List(ctx context.Context) ([]*models.Device, error) {
	return s.repomanager.Devices(s.db).List(ctx)
}

func (s *DeviceService) ListByTag(ctx context.Context, tagID string) ([]*models.Device, error) {
	return s.repomanager.Devices(s.db).ListByTag(ctx, tagID)
}

func (s *DeviceService) Update(ctx context.Context, device *models.Device) error {
	return s.repomanager.Devices(s.db).Update(ctx, device)
}

func (s *DeviceService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Devices(s.db).Delete(ctx, id)
}

// SetCredential encrypts the secret and upserts the single credential row
// for the device. The plaintext never touches the database.
func (s *DeviceService) SetCredential(ctx context.Context, deviceID, username string, secret []byte) error {
	if _, err := s.repomanager.Devices(s.db).GetByID(ctx, deviceID); err != nil {
		return err
	}

	ciphertext, nonce, err := cryptox.EncryptSecret(secret, s.credentialKey)
	if err != nil {
		return fmt.Errorf("error encrypting credential: %v", err)
	}

	_, err = s.repomanager.Credentials(s.db).Upsert(ctx, &models.DeviceCredential{
		DeviceID:         deviceID,
		Username:         username,
		SecretCiphertext: ciphertext,
		SecretNonce:      nonce,
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "credential updated", "device", deviceID)
	return nil
}

// GetCredential returns the username and decrypted secret for the device.
func (s *DeviceService) GetCredential(ctx context.Context, deviceID string) (string, []byte, error) {
	credential, err := s.repomanager.Credentials(s.db).GetByDevice(ctx, deviceID)
	if err != nil {
		return "", nil, err
	}

	secret, err := cryptox.DecryptSecret(credential.SecretCiphertext, credential.SecretNonce, s.credentialKey)
	if err != nil {
		return "", nil, fmt.Errorf("error decrypting credential: %v", err)
	}

	return credential.Username, secret, nil
}

func (s *DeviceService) DeleteCredential(ctx context.Context, deviceID string) error {
	return s.repomanager.Credentials(s.db).DeleteByDevice(ctx, deviceID)
}
