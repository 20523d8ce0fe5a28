package otpcodes

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

func (r *PostgresRepository) Insert(ctx context.Context, code *models.OneTimeCode) (*models.OneTimeCode, error) {

	query :=
		`INSERT INTO one_time_codes (account_id, code_hash, purpose, issued_at, expires_at)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		code.AccountID, code.CodeHash, code.Purpose, code.IssuedAt, code.ExpiresAt).
		Scan(&code.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return code, nil
}

func (r *PostgresRepository) GetLatestLive(ctx context.Context, accountID string, purpose string) (*models.OneTimeCode, error) {
	query :=
		`SELECT id, account_id, code_hash, purpose, issued_at, expires_at, consumed_at
		 FROM one_time_codes
		 WHERE account_id = $1 AND purpose = $2 AND consumed_at IS NULL
		 ORDER BY issued_at DESC
		 LIMIT 1
		 `

	code := &models.OneTimeCode{}
	err := r.db.QueryRowContext(ctx, query, accountID, purpose).
		Scan(&code.ID, &code.AccountID, &code.CodeHash, &code.Purpose,
			&code.IssuedAt, &code.ExpiresAt, &code.ConsumedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return code, nil
}

// Consume relies on the conditional UPDATE as the arbiter: under concurrent
// calls the row is locked by the first writer and every later UPDATE matches
// zero rows.
func (r *PostgresRepository) Consume(ctx context.Context, id string) (bool, error) {
	query :=
		`UPDATE one_time_codes SET consumed_at = now()
		 WHERE id = $1 AND consumed_at IS NULL
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

func (r *PostgresRepository) InvalidateLive(ctx context.Context, accountID string, purpose string) error {
	query :=
		`UPDATE one_time_codes SET consumed_at = now()
		 WHERE account_id = $1 AND purpose = $2 AND consumed_at IS NULL
		 `

	_, err := r.db.ExecContext(ctx, query, accountID, purpose)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM one_time_codes WHERE expires_at < now()`

	_, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
