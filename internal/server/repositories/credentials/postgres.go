package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/dbx"
	"github.com/fnpsdn/netinv/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, credential *models.DeviceCredential) (*models.DeviceCredential, error) {

	query :=
		`INSERT INTO device_credentials (device_id, username, secret_ciphertext, secret_nonce)
	     VALUES ($1, $2, $3, $4)
		 ON CONFLICT (device_id) DO UPDATE
		 SET username = EXCLUDED.username,
		     secret_ciphertext = EXCLUDED.secret_ciphertext,
		     secret_nonce = EXCLUDED.secret_nonce,
		     updated_at = now()
		 RETURNING id, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		credential.DeviceID, credential.Username,
		credential.SecretCiphertext, credential.SecretNonce).
		Scan(&credential.ID, &credential.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return credential, nil
}

func (r *PostgresRepository) GetByDevice(ctx context.Context, deviceID string) (*models.DeviceCredential, error) {
	query :=
		`SELECT id, device_id, username, secret_ciphertext, secret_nonce, updated_at
		 FROM device_credentials
		 WHERE device_id = $1
		 `

	credential := &models.DeviceCredential{}
	err := r.db.QueryRowContext(ctx, query, deviceID).
		Scan(&credential.ID, &credential.DeviceID, &credential.Username,
			&credential.SecretCiphertext, &credential.SecretNonce,
			&credential.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return credential, nil
}

func (r *PostgresRepository) DeleteByDevice(ctx context.Context, deviceID string) error {
	query := `DELETE FROM device_credentials WHERE device_id = $1`

	res, err := r.db.ExecContext(ctx, query, deviceID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
