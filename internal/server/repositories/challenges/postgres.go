package challenges

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

func (r *PostgresRepository) Create(ctx context.Context, challenge *models.LoginChallenge) (*models.LoginChallenge, error) {

	query :=
		`INSERT INTO login_challenges (account_id, method, expires_at)
	     VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		challenge.AccountID, challenge.Method, challenge.ExpiresAt).
		Scan(&challenge.ID, &challenge.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return challenge, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.LoginChallenge, error) {
	query :=
		`SELECT id, account_id, method, attempts, expires_at, completed_at, created_at
		 FROM login_challenges
		 WHERE id = $1
		 `

	challenge := &models.LoginChallenge{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&challenge.ID, &challenge.AccountID, &challenge.Method,
			&challenge.Attempts, &challenge.ExpiresAt, &challenge.CompletedAt,
			&challenge.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return challenge, nil
}

// IncrementAttempts lets the database arbitrate: each caller reads back the
// counter value its own increment produced, so two racing submissions see
// different counts.
func (r *PostgresRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	query :=
		`UPDATE login_challenges SET attempts = attempts + 1
		 WHERE id = $1
		 RETURNING attempts
		 `

	var attempts int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&attempts)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return attempts, nil
}

func (r *PostgresRepository) Complete(ctx context.Context, id string) (bool, error) {
	query :=
		`UPDATE login_challenges SET completed_at = now()
		 WHERE id = $1 AND completed_at IS NULL
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
