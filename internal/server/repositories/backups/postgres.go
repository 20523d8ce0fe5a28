package backups

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

func (r *PostgresRepository) Create(ctx context.Context, backup *models.Backup) (*models.Backup, error) {

	query :=
		`INSERT INTO backups (device_id, storage_key, status, taken_at)
	     VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		backup.DeviceID, backup.StorageKey, backup.Status, backup.TakenAt).
		Scan(&backup.ID, &backup.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return backup, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Backup, error) {
	query :=
		`SELECT id, device_id, storage_key, status, taken_at, created_at
		 FROM backups
		 WHERE id = $1
		 `

	backup := &models.Backup{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&backup.ID, &backup.DeviceID, &backup.StorageKey, &backup.Status,
			&backup.TakenAt, &backup.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return backup, nil
}

func (r *PostgresRepository) ListByDevice(ctx context.Context, deviceID string) ([]*models.Backup, error) {
	query :=
		`SELECT id, device_id, storage_key, status, taken_at, created_at
		 FROM backups
		 WHERE device_id = $1
		 ORDER BY taken_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Backup{}
	for rows.Next() {
		backup := &models.Backup{}
		err := rows.Scan(&backup.ID, &backup.DeviceID, &backup.StorageKey,
			&backup.Status, &backup.TakenAt, &backup.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, backup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) MarkStored(ctx context.Context, id string) (bool, error) {
	query :=
		`UPDATE backups SET status = 'stored'
		 WHERE id = $1 AND status = 'pending'
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return affected == 1, nil
}
